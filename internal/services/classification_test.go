package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ticket-desk/internal/classifier"
	"ticket-desk/internal/dto"
	apperrors "ticket-desk/pkg/errors"
)

type failingClassifier struct{}

func (failingClassifier) Predict(string) (classifier.Prediction, error) {
	return classifier.Prediction{}, errors.New("non-finite decision score")
}
func (failingClassifier) ExtractEntities(string) map[string]string { return nil }
func (failingClassifier) Mode() string                             { return classifier.ModeModel }

func TestClassificationService_Heuristic(t *testing.T) {
	svc := NewClassificationService(classifier.NewHeuristic(), zap.NewNop())
	assert.Equal(t, classifier.ModeHeuristic, svc.Mode())

	resp, err := svc.Predict(context.Background(), dto.PredictRequestDTO{Text: "I need a refund, contact me at a@b.com regarding error 404"})
	require.NoError(t, err)
	assert.Equal(t, classifier.CategoryBilling, resp.Category)
	assert.Equal(t, classifier.PriorityLow, resp.Priority)
	assert.Equal(t, map[string]string{"email": "a@b.com", "error_code": "error 404"}, resp.ExtractedEntities)
}

func TestClassificationService_Failure(t *testing.T) {
	svc := NewClassificationService(failingClassifier{}, zap.NewNop())
	_, err := svc.Predict(context.Background(), dto.PredictRequestDTO{Text: "anything"})
	assert.ErrorIs(t, err, apperrors.ErrPredictionFailed)
}
