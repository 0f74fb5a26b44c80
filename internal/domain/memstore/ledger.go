package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/ledger"
)

type Ledger struct {
	db *DB
}

func (db *DB) Ledger() *Ledger {
	return &Ledger{db: db}
}

func (s *Ledger) Insert(_ context.Context, entry ledger.Entry) (ledger.Entry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check("InsertEntry"); err != nil {
		return ledger.Entry{}, err
	}
	if entry.Kind == ledger.KindCredit {
		entry.BillFile, entry.PaidBy, entry.SourceKind, entry.SourceID = "", "", "", ""
	}
	return s.db.insertEntry(entry), nil
}

func (s *Ledger) Get(_ context.Context, kind ledger.Kind, id string) (ledger.Entry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, e := range s.db.data.entries {
		if e.Kind == kind && e.ID == id {
			return e, nil
		}
	}
	return ledger.Entry{}, ledger.ErrEntryNotFound
}

func (s *Ledger) Count(_ context.Context, filter ledger.Filter) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.filterEntries(filter)), nil
}

func (s *Ledger) List(_ context.Context, filter ledger.Filter) ([]ledger.Entry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check("ListEntries"); err != nil {
		return nil, err
	}
	out := s.db.filterEntries(filter)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (db *DB) filterEntries(filter ledger.Filter) []ledger.Entry {
	var out []ledger.Entry
	for _, e := range db.data.entries {
		if filter.Kind != "" && e.Kind != filter.Kind {
			continue
		}
		if !filter.From.IsZero() && e.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Date.After(filter.To) {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.PaidBy != "" && !containsFold(e.PaidBy, filter.PaidBy) {
			continue
		}
		if filter.Amount != nil && !e.Amount.Equal(*filter.Amount) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Ledger) Update(_ context.Context, entry ledger.Entry) (ledger.Entry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, e := range s.db.data.entries {
		if e.Kind != entry.Kind || e.ID != entry.ID {
			continue
		}
		entry.CreatedAt = e.CreatedAt
		entry.SourceKind = e.SourceKind
		entry.SourceID = e.SourceID
		s.db.data.entries[i] = entry
		return entry, nil
	}
	return ledger.Entry{}, ledger.ErrEntryNotFound
}

func (s *Ledger) Delete(_ context.Context, kind ledger.Kind, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, e := range s.db.data.entries {
		if e.Kind == kind && e.ID == id {
			s.db.data.entries = append(s.db.data.entries[:i:i], s.db.data.entries[i+1:]...)
			return nil
		}
	}
	return ledger.ErrEntryNotFound
}

func (s *Ledger) Sum(_ context.Context, kind ledger.Kind, from, to time.Time) (decimal.Decimal, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	total := decimal.Zero
	for _, e := range s.db.filterEntries(ledger.Filter{Kind: kind, From: from, To: to}) {
		total = total.Add(e.Amount)
	}
	return total, nil
}
