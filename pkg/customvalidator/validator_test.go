package customvalidator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotBlank(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))

	type payload struct {
		Text string `validate:"notblank"`
	}
	assert.NoError(t, v.Struct(payload{Text: " ok "}))
	assert.Error(t, v.Struct(payload{Text: " \n\t"}))
	assert.Error(t, v.Struct(payload{}))
}
