package payroll

import (
	"net/http"

	"backoffice/internal/platform/apperror"
)

var (
	ErrPayrollNotFound  = apperror.New(apperror.CodeNotFound, "payroll record not found", http.StatusNotFound)
	ErrDuplicatePayroll = apperror.New(apperror.CodeConflict, "payroll already exists for this employee and period", http.StatusConflict)
	ErrPaidImmutable    = apperror.New(apperror.CodeInvalidState, "a paid payroll record cannot be edited", http.StatusConflict)
)
