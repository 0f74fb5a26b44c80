package shared

import (
	"strconv"
	"strings"
	"time"

	"backoffice/internal/platform/apperror"
)

// Validator collects request-shape issues (query params, path values, date
// strings) before a command reaches a service.
type Validator struct {
	issues []apperror.FieldIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]apperror.FieldIssue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, apperror.FieldIssue{Field: field, Reason: reason})
}

func (v *Validator) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
	}
}

// Date parses a required date.
func (v *Validator) Date(field, raw string) time.Time {
	parsed, err := ParseDate(strings.TrimSpace(raw))
	if err != nil || parsed.IsZero() {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return time.Time{}
	}
	return parsed
}

// OptionalDate parses a date that may be empty.
func (v *Validator) OptionalDate(field, raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed := v.Date(field, raw)
	if parsed.IsZero() {
		return nil
	}
	return &parsed
}

func (v *Validator) DateOrder(startField string, start time.Time, endField string, end time.Time) {
	if start.IsZero() || end.IsZero() {
		return
	}
	if end.Before(start) {
		v.Add(startField, "must be on or before "+endField)
		v.Add(endField, "must be on or after "+startField)
	}
}

// Int parses a required integer within [lo, hi].
func (v *Validator) Int(field, raw string, lo, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		v.Add(field, "must be a number")
		return 0
	}
	if n < lo || n > hi {
		v.Add(field, "must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
	}
	return n
}

// Period reads the year and month query parameters.
func (v *Validator) Period(year, month string) (int, time.Month) {
	y := v.Int("year", year, 2000, 2100)
	m := v.Int("month", month, 1, 12)
	return y, time.Month(m)
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

// Err returns the collected issues as a validation AppError, or nil.
func (v *Validator) Err() error {
	if !v.HasIssues() {
		return nil
	}
	return apperror.Validation(v.issues...)
}
