package apperror

import (
	"errors"
	"net/http"
)

var ErrValidation = errors.New("validation failed")

var (
	ErrNotFound = New(CodeNotFound, "resource not found", http.StatusNotFound)

	ErrInternal = New(CodeInternalError, "an unexpected error occurred", http.StatusInternalServerError)

	ErrBusy = New(CodeConflict, "another operation holds this resource, retry later", http.StatusConflict)
)

// Is matches AppErrors by code so wrapped sentinels compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}
