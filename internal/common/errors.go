package common

import (
	"errors"
	"net/http"
)

// Sentinel errors for the persistence core. Handlers map these onto HTTP
// statuses; everything below them wraps with %w so errors.Is keeps working.
var (
	ErrMissingField          = errors.New("missing required field")
	ErrInvalidAttachmentType = errors.New("invalid attachment type")
	ErrNotFound              = errors.New("not found")
	ErrStorageWrite          = errors.New("storage write error")
	ErrStorageRead           = errors.New("storage read error")
	ErrRowWrite              = errors.New("row write error")
)

// StatusCode maps a core error to its HTTP status
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrMissingField), errors.Is(err, ErrInvalidAttachmentType):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorKey returns the stable machine-readable error key for the response body
func ErrorKey(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "MissingField"
	case errors.Is(err, ErrInvalidAttachmentType):
		return "InvalidAttachmentType"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrStorageWrite):
		return "StorageWriteError"
	case errors.Is(err, ErrStorageRead):
		return "StorageReadError"
	case errors.Is(err, ErrRowWrite):
		return "RowWriteError"
	default:
		return "InternalError"
	}
}
