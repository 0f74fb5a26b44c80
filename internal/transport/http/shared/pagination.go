package shared

import (
	"net/http"
	"strconv"

	"backoffice/internal/platform/apperror"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit and offset. A limit above MaxPageSize is
// clamped; malformed or negative values are rejected.
func ParsePagination(r *http.Request) (Pagination, error) {
	page := Pagination{Limit: DefaultPageSize}
	var issues []apperror.FieldIssue
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			issues = append(issues, apperror.FieldIssue{Field: "limit", Reason: "must be a positive integer"})
		} else {
			page.Limit = min(v, MaxPageSize)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			issues = append(issues, apperror.FieldIssue{Field: "offset", Reason: "must be zero or a positive integer"})
		} else {
			page.Offset = v
		}
	}
	if len(issues) > 0 {
		return Pagination{}, apperror.Validation(issues...)
	}
	return page, nil
}
