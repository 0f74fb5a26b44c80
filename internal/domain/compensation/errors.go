package compensation

import (
	"net/http"

	"backoffice/internal/platform/apperror"
)

var ErrStructureNotFound = apperror.New(apperror.CodeNotFound, "salary structure not found", http.StatusNotFound)
