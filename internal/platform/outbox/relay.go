package outbox

import (
	"context"

	"go.uber.org/zap"

	"backoffice/internal/platform/metrics"
)

const relayBatchSize = 50

type RelayStore interface {
	ClaimPending(ctx context.Context, limit int) ([]Event, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type Relay struct {
	store     RelayStore
	publisher Publisher
	log       *zap.Logger
	metrics   *metrics.Collector
}

type RelayResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Dead   int `json:"dead"`
}

func NewRelay(store RelayStore, publisher Publisher, log *zap.Logger, collector *metrics.Collector) *Relay {
	return &Relay{store: store, publisher: publisher, log: log, metrics: collector}
}

// Flush publishes one batch of claimed events. A failed publish is recorded
// on the event and does not stop the batch.
func (r *Relay) Flush(ctx context.Context) (RelayResult, error) {
	var result RelayResult
	events, err := r.store.ClaimPending(ctx, relayBatchSize)
	if err != nil {
		return result, err
	}

	for _, event := range events {
		if err := r.publisher.Publish(ctx, event); err != nil {
			r.log.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			if markErr := r.store.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				r.log.Warn("mark outbox failed failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			r.metrics.OutboxPublished(false)
			result.Failed++
			if event.RetryCount+1 >= MaxAttempts {
				r.log.Warn("outbox event dead-lettered",
					zap.String("outbox_id", event.ID),
					zap.Int("attempts", event.RetryCount+1),
				)
				result.Dead++
			}
			continue
		}
		if err := r.store.MarkSent(ctx, event.ID); err != nil {
			r.log.Error("mark outbox sent failed", zap.String("outbox_id", event.ID), zap.Error(err))
			continue
		}
		r.metrics.OutboxPublished(true)
		result.Sent++
	}
	return result, nil
}
