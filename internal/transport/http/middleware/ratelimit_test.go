package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"backoffice/internal/requestctx"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitUsesActorKeyBeforeIPFallback(t *testing.T) {
	now := time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)
	limited := RateLimit(1, time.Minute, withClock(func() time.Time { return now }))(noContent())
	userCtx := requestctx.WithActor(context.Background(), requestctx.Actor{ID: "user-1"})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/p1/status", nil).WithContext(userCtx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	assert.Equal(t, http.StatusNoContent, firstRec.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/p1/status", nil).WithContext(userCtx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	assert.Equal(t, http.StatusTooManyRequests, secondRec.Code)
	assert.NotEmpty(t, secondRec.Header().Get("Retry-After"))
	assert.Contains(t, secondRec.Body.String(), "RATE_LIMITED")
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	now := time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)
	limited := RateLimit(1, time.Minute, withClock(func() time.Time { return now }))(noContent())

	first := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
	first.RemoteAddr = "203.0.113.10:4444"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	assert.Equal(t, http.StatusNoContent, firstRec.Code)

	second := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
	second.RemoteAddr = "203.0.113.10:5555"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	assert.Equal(t, http.StatusTooManyRequests, secondRec.Code)

	other := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
	other.RemoteAddr = "203.0.113.99:5555"
	otherRec := httptest.NewRecorder()
	limited.ServeHTTP(otherRec, other)
	assert.Equal(t, http.StatusNoContent, otherRec.Code)
}

func TestRateLimitRefills(t *testing.T) {
	now := time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)
	limited := RateLimit(2, time.Minute, withClock(func() time.Time { return now }))(noContent())

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusNoContent, send())
	assert.Equal(t, http.StatusNoContent, send())
	assert.Equal(t, http.StatusTooManyRequests, send())

	now = now.Add(30 * time.Second)
	assert.Equal(t, http.StatusNoContent, send())
}

func TestBulkMutationRateLimitOnlyCoversBulkRoutes(t *testing.T) {
	limited := BulkMutationRateLimit(4, time.Hour)(noContent())

	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "192.0.2.7:1000"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, "/api/v1/payroll/bulk-generate?year=2026&month=9"))
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodPost, "/api/v1/payroll/bulk-status"))
	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, "/api/v1/ledger/credits"))
	assert.Equal(t, http.StatusNoContent, send(http.MethodGet, "/api/v1/payroll/bulk-generate"))
}
