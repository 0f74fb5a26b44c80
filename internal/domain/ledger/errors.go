package ledger

import (
	"net/http"

	"backoffice/internal/platform/apperror"
)

var (
	ErrEntryNotFound   = apperror.New(apperror.CodeNotFound, "ledger entry not found", http.StatusNotFound)
	ErrReconciledEntry = apperror.New(apperror.CodeInvalidState, "ledger entry was produced by a payment and cannot be changed", http.StatusConflict)
)
