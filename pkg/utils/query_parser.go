package utils

import (
	"net/url"
	"strconv"

	apperrors "ticket-desk/pkg/errors"
)

// QueryInt reads an optional integer query parameter. A missing or empty
// parameter yields nil.
func QueryInt(query url.Values, name string) (*int, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewBadRequestError(name + " must be an integer")
	}
	return &v, nil
}
