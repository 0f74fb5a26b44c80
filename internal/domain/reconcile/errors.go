package reconcile

import (
	"net/http"

	"backoffice/internal/platform/apperror"
)

var ErrSourceNotFound = apperror.New(apperror.CodeNotFound, "payable entity not found", http.StatusNotFound)
