package payables

import (
	"net/http"

	"backoffice/internal/platform/apperror"
)

var (
	ErrInvoiceNotFound        = apperror.New(apperror.CodeNotFound, "invoice not found", http.StatusNotFound)
	ErrPurchaseOrderNotFound  = apperror.New(apperror.CodeNotFound, "purchase order not found", http.StatusNotFound)
	ErrDuplicateInvoice       = apperror.New(apperror.CodeConflict, "invoice number already exists", http.StatusConflict)
	ErrDuplicatePurchaseOrder = apperror.New(apperror.CodeConflict, "purchase order number already exists", http.StatusConflict)

	// ErrPaidIsFinal rejects moving a paid invoice or purchase order to another status.
	ErrPaidIsFinal = apperror.New(apperror.CodeInvalidState, "a paid document cannot change status", http.StatusConflict)
)
