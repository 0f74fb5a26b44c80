package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type memoryIdempotency struct {
	mu   sync.Mutex
	rows map[string][2]string
}

func (m *memoryIdempotency) Check(_ context.Context, actor, endpoint, key, hash string) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[actor+"|"+endpoint+"|"+key]
	if !ok {
		return nil, false, nil
	}
	if row[0] != hash {
		return nil, false, ErrIdempotencyConflict
	}
	return json.RawMessage(row[1]), true, nil
}

func (m *memoryIdempotency) Save(_ context.Context, actor, endpoint, key, hash string, response json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = map[string][2]string{}
	}
	m.rows[actor+"|"+endpoint+"|"+key] = [2]string{hash, string(response)}
	return nil
}

func TestRequestHashDeterministic(t *testing.T) {
	assert.Equal(t, RequestHash([]byte("payload")), RequestHash([]byte("payload")))
	assert.NotEqual(t, RequestHash([]byte("payload")), RequestHash([]byte("other")))
}

func TestIdempotentReplaysStoredResponse(t *testing.T) {
	calls := 0
	handler := Idempotent(&memoryIdempotency{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"createdCount":3}}`))
	}))

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/bulk-generate?year=2026&month=9", strings.NewReader(body))
		req.Header.Set(IdempotencyHeader, "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send(`{}`)
	second := send(`{}`)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replay"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	conflict := send(`{"different":true}`)
	assert.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotentSkipsFailures(t *testing.T) {
	calls := 0
	handler := Idempotent(&memoryIdempotency{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false}`))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, "key-2")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, calls)
}
