package memstore

import (
	"context"
	"sort"
	"time"

	"backoffice/internal/domain/audit"
	"backoffice/internal/platform/outbox"
)

type Audit struct {
	db *DB
}

func (db *DB) Audit() *Audit {
	return &Audit{db: db}
}

func (s *Audit) Insert(_ context.Context, entry audit.Entry) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check("InsertAudit"); err != nil {
		return err
	}
	entry.ID = newID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.db.now()
	}
	s.db.data.audit = append(s.db.data.audit, entry)
	return nil
}

// SeedAudit stores an entry with its own timestamp.
func (db *DB) SeedAudit(entry audit.Entry) {
	db.mu.Lock()
	defer db.mu.Unlock()
	entry.ID = newID()
	db.data.audit = append(db.data.audit, entry)
}

func (s *Audit) Count(_ context.Context, filter audit.Filter) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.filterAudit(filter)), nil
}

func (s *Audit) List(_ context.Context, filter audit.Filter, limit, offset int) ([]audit.Entry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := s.db.filterAudit(filter)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (db *DB) filterAudit(filter audit.Filter) []audit.Entry {
	var out []audit.Entry
	for _, e := range db.data.audit {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if !filter.Date.IsZero() && e.CreatedAt.Format("2006-01-02") != filter.Date.Format("2006-01-02") {
			continue
		}
		if filter.Actor != "" && !containsFold(e.PerformedBy, filter.Actor) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Audit) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	kept := s.db.data.audit[:0:0]
	var purged int64
	for _, e := range s.db.data.audit {
		if e.CreatedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, e)
	}
	s.db.data.audit = kept
	return purged, nil
}

// Outbox implements outbox.RelayStore.
type Outbox struct {
	db *DB
}

func (db *DB) Outbox() *Outbox {
	return &Outbox{db: db}
}

func (s *Outbox) ClaimPending(_ context.Context, limit int) ([]outbox.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []outbox.Event
	for _, e := range s.db.data.events {
		if (e.Status == outbox.StatusPending || e.Status == outbox.StatusFailed) && e.RetryCount < outbox.MaxAttempts {
			out = append(out, e)
		}
	}
	return page(out, limit, 0), nil
}

func (s *Outbox) MarkSent(_ context.Context, id string) error {
	return s.mark(id, outbox.StatusSent)
}

func (s *Outbox) MarkFailed(_ context.Context, id, _ string) error {
	return s.mark(id, outbox.StatusFailed)
}

func (s *Outbox) mark(id, status string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, e := range s.db.data.events {
		if e.ID == id {
			s.db.data.events[i].Status = status
			if status == outbox.StatusFailed {
				s.db.data.events[i].RetryCount++
				if s.db.data.events[i].RetryCount >= outbox.MaxAttempts {
					s.db.data.events[i].Status = outbox.StatusDead
				}
			}
		}
	}
	return nil
}
