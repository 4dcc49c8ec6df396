package apierr

import (
	"errors"
	"net/http"
)

// Render maps a service error to the HTTP status code and public
// message an HTTP handler should respond with, per the error
// handling design's propagation/rendering table. Unrecognized errors
// render as 500 with a generic message — internals are never leaked.
func Render(err error) (status int, message string) {
	var idErr *IdsFromCache
	var urlErr *InvalidURL
	var badReq *BadRequestDetail

	switch {
	case errors.As(err, &idErr):
		return http.StatusInternalServerError, "internal server error"
	case errors.As(err, &urlErr):
		return http.StatusInternalServerError, "internal server error"
	case errors.As(err, &badReq):
		return http.StatusBadRequest, badReq.Detail
	case errors.Is(err, ErrNoContent):
		return http.StatusNoContent, ""
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrInvalidUser),
		errors.Is(err, ErrInvalidPass),
		errors.Is(err, ErrInvalidEmail):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, ErrWrongPassword),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrAuthTimeout),
		errors.Is(err, ErrNotActive),
		errors.Is(err, ErrBlocked):
		return http.StatusForbidden, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
