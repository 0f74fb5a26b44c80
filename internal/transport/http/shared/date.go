package shared

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate reads a calendar date. Full RFC3339 timestamps are accepted and
// truncated to their date; the result is always midnight UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		y, m, d := parsed.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(DateLayout, value)
}
