package outbox

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/platform/querier"
	"backoffice/internal/requestctx"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusDead    = "dead"

	// MaxAttempts is the number of failed publishes after which an event is
	// dead-lettered and no longer claimed.
	MaxAttempts = 5

	// claimLease hides a claimed event from other relays until it is marked.
	claimLease = 2 * time.Minute

	EventDebitRecorded = "ledger.debit.recorded"
)

type Event struct {
	ID            string    `json:"id"`
	RequestID     string    `json:"requestId"`
	AggregateType string    `json:"aggregateType"`
	AggregateID   string    `json:"aggregateId"`
	EventType     string    `json:"eventType"`
	Payload       []byte    `json:"payload"`
	Status        string    `json:"status"`
	RetryCount    int       `json:"retryCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewEvent(ctx context.Context, aggregateType, aggregateID, eventType string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:            uuid.NewString(),
		RequestID:     requestctx.GetRequestID(ctx),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       body,
		Status:        StatusPending,
	}, nil
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, event Event) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO outbox_events (id, request_id, aggregate_type, aggregate_id, event_type, payload, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, event.ID, event.RequestID, event.AggregateType, event.AggregateID, event.EventType, event.Payload, StatusPending)
	return err
}

// ClaimPending leases up to limit due events to the caller. Rows locked by a
// concurrent claim are skipped, and the lease keeps them from being claimed
// again until it expires or the event is marked.
func (s *Store) ClaimPending(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.DB.Query(ctx, `
    WITH due AS (
      SELECT id FROM outbox_events
      WHERE status IN ($1, $2)
        AND retry_count < $3
        AND (next_retry_at IS NULL OR next_retry_at <= now())
      ORDER BY created_at ASC
      LIMIT $4
      FOR UPDATE SKIP LOCKED
    )
    UPDATE outbox_events o
    SET next_retry_at = now() + $5 * interval '1 second'
    FROM due
    WHERE o.id = due.id
    RETURNING o.id::text, o.request_id, o.aggregate_type, o.aggregate_id, o.event_type, o.payload, o.status, o.retry_count, o.created_at
  `, StatusPending, StatusFailed, MaxAttempts, limit, int(claimLease.Seconds()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RequestID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload, &e.Status, &e.RetryCount, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// RETURNING does not keep the CTE order
	sort.SliceStable(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	return events, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE outbox_events SET status = $1, sent_at = now(), last_error = ''
    WHERE id = $2
  `, StatusSent, id)
	return err
}

// MarkFailed schedules the event for another attempt with linear backoff, or
// dead-letters it once MaxAttempts publishes have failed.
func (s *Store) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE outbox_events
    SET status = CASE WHEN retry_count + 1 >= $4 THEN $5 ELSE $1 END,
        retry_count = retry_count + 1,
        last_error = $2,
        next_retry_at = now() + (retry_count + 1) * interval '30 seconds'
    WHERE id = $3
  `, StatusFailed, reason, id, MaxAttempts, StatusDead)
	return err
}
