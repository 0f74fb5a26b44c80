package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Fields     []FieldIssue
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// Invalid reports a validation failure on a single field.
func Invalid(field, reason string) *AppError {
	return Validation(FieldIssue{Field: field, Reason: reason})
}

// Validation builds an INVALID_INPUT error carrying per-field issues.
func Validation(issues ...FieldIssue) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    "payload validation failed",
		HTTPStatus: http.StatusBadRequest,
		Err:        ErrValidation,
		Fields:     issues,
	}
}

// Persistence wraps a storage failure. Errors that already carry an AppError
// are returned unchanged so business rejections keep their code.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Wrap(err, CodeInternalError, "storage operation failed", http.StatusInternalServerError)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
