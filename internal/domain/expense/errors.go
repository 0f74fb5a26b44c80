package expense

import (
	"net/http"

	"backoffice/internal/platform/apperror"
)

var (
	ErrClaimNotFound = apperror.New(apperror.CodeNotFound, "expense claim not found", http.StatusNotFound)

	// ErrInconsistentTransition rejects moves outside the claim transition table,
	// including paying a claim that is not Approved.
	ErrInconsistentTransition = apperror.New(apperror.CodeInvalidState, "expense claim cannot move to the requested status", http.StatusConflict)
)
