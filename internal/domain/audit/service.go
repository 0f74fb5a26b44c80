package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"backoffice/internal/platform/metrics"
	"backoffice/internal/requestctx"
)

// Recorder is the write side used by the business services.
type Recorder interface {
	Record(ctx context.Context, action, resourceType, resourceID, detail string)
}

type Service struct {
	store     StoreAPI
	log       *zap.Logger
	metrics   *metrics.Collector
	retention time.Duration
	now       func() time.Time
}

func NewService(store StoreAPI, log *zap.Logger, collector *metrics.Collector, retention time.Duration) *Service {
	return &Service{store: store, log: log, metrics: collector, retention: retention, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record appends an entry attributed to the actor on ctx. A failed write is
// logged and counted; it never fails the caller.
func (s *Service) Record(ctx context.Context, action, resourceType, resourceID, detail string) {
	entry := Entry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      detail,
		PerformedBy:  requestctx.ActorName(ctx),
		RequestID:    requestctx.GetRequestID(ctx),
	}
	if err := s.store.Insert(context.WithoutCancel(ctx), entry); err != nil {
		s.metrics.AuditFailure()
		s.log.Error("audit write failed",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.String("resource_id", resourceID),
			zap.String("request_id", entry.RequestID),
			zap.Error(err),
		)
	}
}

// List purges entries past the retention window before reading.
func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, int, error) {
	if _, err := s.Purge(ctx); err != nil {
		s.log.Warn("audit purge failed", zap.Error(err))
	}
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	entries, err := s.store.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (s *Service) Purge(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	return s.store.PurgeBefore(ctx, s.now().Add(-s.retention))
}
