package errors

import (
	"encoding/json"
	stderrors "errors"
	"log"
	"net/http"

	"parknest/internal/mapview"
	"parknest/internal/service"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Field   string `json:"field,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// Helpers for common errors
var (
	ErrBadRequest = func(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, msg) }
	ErrNotFound   = func(msg string) *HTTPError { return NewHTTPError(http.StatusNotFound, msg) }
	ErrInternal   = func() *HTTPError { return NewHTTPError(http.StatusInternalServerError, "Internal server error") }
)

// FromError maps domain errors onto HTTP errors. Anything unrecognised is an
// internal error and its text is not exposed.
func FromError(err error) *HTTPError {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr
	}

	var verr *service.ValidationError
	switch {
	case stderrors.As(err, &verr):
		return &HTTPError{Code: http.StatusBadRequest, Message: verr.Message, Field: verr.Field}
	case stderrors.Is(err, service.ErrInvalidUserType):
		return ErrBadRequest(err.Error())
	case stderrors.Is(err, mapview.ErrOutsideView):
		return ErrBadRequest(err.Error())
	case stderrors.Is(err, service.ErrListingNotFound):
		return ErrNotFound(err.Error())
	case stderrors.Is(err, mapview.ErrNotMounted):
		return NewHTTPError(http.StatusConflict, err.Error())
	default:
		return ErrInternal()
	}
}

// Write sends err as a JSON body with its status code.
func Write(w http.ResponseWriter, err error) {
	httpErr := FromError(err)
	if httpErr.Code >= http.StatusInternalServerError {
		log.Printf("Error: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Code)
	json.NewEncoder(w).Encode(httpErr)
}
