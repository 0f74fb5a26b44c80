package employee

import (
	"net/http"

	"backoffice/internal/platform/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(apperror.CodeNotFound, "employee not found", http.StatusNotFound)
	ErrDuplicateCode    = apperror.New(apperror.CodeConflict, "employee code already exists", http.StatusConflict)
	ErrAlreadyResigned  = apperror.New(apperror.CodeInvalidState, "employee already resigned", http.StatusConflict)
)
