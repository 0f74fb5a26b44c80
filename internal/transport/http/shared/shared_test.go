package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/platform/apperror"
)

func TestValidatorCollectsIssues(t *testing.T) {
	v := NewValidator()
	v.Required("vendor", " ")
	start := v.Date("from", "2026-09-30")
	end := v.Date("to", "2026-09-01")
	v.DateOrder("from", start, "to", end)
	year, month := v.Period("1999", "9")

	assert.Equal(t, 1999, year)
	assert.Equal(t, time.September, month)
	err := v.Err()
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Fields, 4)
}

func TestValidatorOptionalDate(t *testing.T) {
	v := NewValidator()
	assert.Nil(t, v.OptionalDate("dueDate", ""))
	due := v.OptionalDate("dueDate", "2026-10-15")
	require.NotNil(t, due)
	assert.Equal(t, 15, due.Day())
	assert.NoError(t, v.Err())

	v.OptionalDate("dueDate", "15/10/2026")
	assert.Error(t, v.Err())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "x", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other":1}`))
	assert.True(t, apperror.IsValidation(DecodeJSON(req, &dst)))

	rec := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)
	err := DecodeJSON(req, &dst)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, appErr.HTTPStatus)
}

func TestParsePaginationClamps(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=900&offset=20", nil)
	page, err := ParsePagination(req)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.Limit)
	assert.Equal(t, 20, page.Offset)

	page, err = ParsePagination(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, page.Limit)
}

func TestParsePaginationRejectsMalformedValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=abc&offset=-1", nil)
	_, err := ParsePagination(req)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Len(t, appErr.Fields, 2)
	assert.Equal(t, "limit", appErr.Fields[0].Field)
	assert.Equal(t, "offset", appErr.Fields[1].Field)
}

func TestParseDateTruncatesTimestamps(t *testing.T) {
	got, err := ParseDate("2026-09-30T23:15:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseDate("30/09/2026")
	assert.Error(t, err)
}
