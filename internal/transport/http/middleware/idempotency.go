package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"backoffice/internal/platform/apperror"
	"backoffice/internal/platform/querier"
	"backoffice/internal/requestctx"
	"backoffice/internal/transport/http/api"
)

const IdempotencyHeader = "Idempotency-Key"

var ErrIdempotencyConflict = apperror.New(apperror.CodeConflict, "idempotency key conflicts with existing request", http.StatusConflict)

// IdempotencyStore remembers the response of a keyed request per actor and
// endpoint.
type IdempotencyStore interface {
	Check(ctx context.Context, actor, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, actor, endpoint, key, requestHash string, response json.RawMessage) error
}

type PGIdempotencyStore struct {
	db querier.Querier
}

func NewIdempotencyStore(db querier.Querier) *PGIdempotencyStore {
	return &PGIdempotencyStore{db: db}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *PGIdempotencyStore) Check(ctx context.Context, actor, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	var storedHash string
	var stored json.RawMessage
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE actor = $1 AND key = $2 AND endpoint = $3
  `, actor, key, endpoint).Scan(&storedHash, &stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if storedHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

func (s *PGIdempotencyStore) Save(ctx context.Context, actor, endpoint, key, requestHash string, response json.RawMessage) error {
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (actor, key, endpoint, request_hash, response_json)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (actor, key, endpoint)
    DO UPDATE SET response_json = EXCLUDED.response_json
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
  `, actor, key, endpoint, requestHash, response)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}

// Idempotent replays the stored response when a request repeats an
// Idempotency-Key with the same body. Reusing a key with a different body is
// a conflict. Only 2xx JSON responses are stored.
func Idempotent(store IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqID := GetRequestID(r.Context())
			payload, err := io.ReadAll(r.Body)
			if err != nil {
				api.FailError(w, apperror.Invalid("body", "could not be read"), reqID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(payload))

			actor := requestctx.ActorName(r.Context())
			endpoint := r.Method + " " + r.URL.Path + "?" + r.URL.RawQuery
			hash := RequestHash(payload)
			stored, found, err := store.Check(r.Context(), actor, endpoint, key, hash)
			if err != nil {
				api.FailError(w, apperror.Persistence(err), reqID)
				return
			}
			if found {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replay", "true")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(stored)
				return
			}

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)
			if capture.status < 200 || capture.status >= 300 || !json.Valid(capture.body.Bytes()) {
				return
			}
			if err := store.Save(r.Context(), actor, endpoint, key, hash, capture.body.Bytes()); err != nil {
				zap.L().Warn("idempotency save failed", zap.String("request_id", reqID), zap.Error(err))
			}
		})
	}
}
