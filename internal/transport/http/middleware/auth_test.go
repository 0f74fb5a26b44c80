package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/auth"
	"backoffice/internal/requestctx"
)

func TestAuthMiddlewareSetsActor(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", Email: "hr@example.com", Role: auth.RoleHR}, time.Hour)
	require.NoError(t, err)

	var actor requestctx.Actor
	var ok bool
	handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok = requestctx.GetActor(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, ok)
	assert.Equal(t, "u1", actor.ID)
	assert.Equal(t, auth.RoleHR, actor.Role)
	assert.Equal(t, "hr@example.com", requestctx.ActorName(requestctx.WithActor(req.Context(), actor)))
}

func TestAuthMiddlewareIgnoresBadToken(t *testing.T) {
	handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := requestctx.GetActor(r.Context())
		assert.False(t, ok)
	}))

	for _, header := range []string{"", "Basic abc", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(auth.RoleFinance)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		actor  *requestctx.Actor
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"viewer", &requestctx.Actor{ID: "v", Role: auth.RoleViewer}, http.StatusForbidden},
		{"finance", &requestctx.Actor{ID: "f", Role: auth.RoleFinance}, http.StatusNoContent},
		{"admin", &requestctx.Actor{ID: "a", Role: auth.RoleAdmin}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.actor != nil {
				req = req.WithContext(requestctx.WithActor(req.Context(), *tc.actor))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
