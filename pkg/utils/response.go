package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "ticket-desk/pkg/errors"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	})
}

// ErrorResponse renders err as a JSON error envelope. HttpError and the
// sentinels in pkg/errors keep their status; validation errors become 400;
// anything else is logged and reported as 500 without details.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Error("HTTP error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}
		return c.JSON(httpErr.Code, &HttpResponse{Status: false, Message: httpErr.Message})
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed on '%s'", e.Field(), e.Tag()))
		}
		return c.JSON(http.StatusBadRequest, &HttpResponse{Status: false, Message: "validation error: " + strings.Join(msgs, "; ")})
	}

	for sentinel, code := range apperrors.StatusOf {
		if errors.Is(err, sentinel) {
			if code >= http.StatusInternalServerError {
				logger.Error("request failed", zap.Error(err))
			}
			return c.JSON(code, &HttpResponse{Status: false, Message: sentinel.Error()})
		}
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return c.JSON(echoErr.Code, &HttpResponse{Status: false, Message: fmt.Sprint(echoErr.Message)})
	}

	logger.Error("unexpected error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, &HttpResponse{Status: false, Message: "internal server error"})
}
