package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"backoffice/internal/platform/apperror"
)

var errBodyTooLarge = apperror.New(apperror.CodeInvalidInput, "request body too large", http.StatusRequestEntityTooLarge)

// DecodeJSON reads the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return apperror.Invalid("body", "must be a valid JSON object")
	}
	return nil
}
