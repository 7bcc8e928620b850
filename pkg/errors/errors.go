package errors

import (
	"fmt"
	"net/http"
)

var (
	// tokens
	ErrInvalidSigningMethod = fmt.Errorf("invalid token signing method")
	ErrInvalidToken         = fmt.Errorf("could not validate credentials")
	ErrTokenExpired         = fmt.Errorf("token has expired")
	ErrTokenSubjectMissing  = fmt.Errorf("token subject is missing")

	// authentication
	ErrEmptyAuthHeader    = fmt.Errorf("authorization header is missing")
	ErrInvalidAuthHeader  = fmt.Errorf("authorization header must be in the form 'Bearer <token>'")
	ErrInvalidCredentials = fmt.Errorf("incorrect email or password")
	ErrTooManyAttempts    = fmt.Errorf("too many failed login attempts, try again later")
	ErrUnauthorized       = fmt.Errorf("not authenticated")
	ErrForbidden          = fmt.Errorf("not enough permissions")

	// domain
	ErrNotFound          = fmt.Errorf("record not found")
	ErrTicketNotFound    = fmt.Errorf("ticket not found")
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrUserAlreadyExists = fmt.Errorf("email already registered")
	ErrInvalidRating     = fmt.Errorf("rating must be between 1 and 5")
	ErrBadRequest        = fmt.Errorf("bad request")
	ErrPredictionFailed  = fmt.Errorf("model not loaded or prediction failed")
)

// HttpError carries the status code and the client-facing message of a failure.
// Err is the underlying cause; it is logged but never sent to the client.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

func NewBadRequestError(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message, nil, nil)
}

// StatusOf maps the sentinel errors above to HTTP status codes.
// Unknown errors map to 500.
var StatusOf = map[error]int{
	ErrInvalidSigningMethod: http.StatusUnauthorized,
	ErrInvalidToken:         http.StatusUnauthorized,
	ErrTokenExpired:         http.StatusUnauthorized,
	ErrTokenSubjectMissing:  http.StatusUnauthorized,
	ErrEmptyAuthHeader:      http.StatusUnauthorized,
	ErrInvalidAuthHeader:    http.StatusUnauthorized,
	ErrInvalidCredentials:   http.StatusUnauthorized,
	ErrUnauthorized:         http.StatusUnauthorized,
	ErrTooManyAttempts:      http.StatusTooManyRequests,
	ErrForbidden:            http.StatusForbidden,
	ErrNotFound:             http.StatusNotFound,
	ErrTicketNotFound:       http.StatusNotFound,
	ErrUserNotFound:         http.StatusNotFound,
	ErrUserAlreadyExists:    http.StatusBadRequest,
	ErrInvalidRating:        http.StatusBadRequest,
	ErrBadRequest:           http.StatusBadRequest,
	ErrPredictionFailed:     http.StatusInternalServerError,
}
