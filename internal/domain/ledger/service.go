package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/audit"
	"backoffice/internal/platform/apperror"
)

type Service struct {
	store StoreAPI
	audit audit.Recorder
}

func NewService(store StoreAPI, recorder audit.Recorder) *Service {
	return &Service{store: store, audit: recorder}
}

func (s *Service) AddCredit(ctx context.Context, input EntryInput) (Entry, error) {
	return s.add(ctx, KindCredit, input)
}

// AddDebit records a manual debit. Debits for payable entities are written by
// the reconciler instead.
func (s *Service) AddDebit(ctx context.Context, input EntryInput) (Entry, error) {
	return s.add(ctx, KindDebit, input)
}

func (s *Service) add(ctx context.Context, kind Kind, input EntryInput) (Entry, error) {
	if err := apperror.Struct(input); err != nil {
		return Entry{}, err
	}
	out, err := s.store.Insert(ctx, input.entry(kind))
	if err != nil {
		return Entry{}, apperror.Persistence(err)
	}
	s.audit.Record(ctx, audit.ActionCreate, resourceFor(kind), out.ID,
		fmt.Sprintf("%s of %s recorded (%s)", kind, out.Amount.StringFixed(2), out.Category))
	return out, nil
}

func (s *Service) Get(ctx context.Context, kind Kind, id string) (Entry, error) {
	if !kind.Valid() {
		return Entry{}, apperror.Invalid("kind", "must be one of: Credit Debit")
	}
	out, err := s.store.Get(ctx, kind, id)
	if err != nil {
		return Entry{}, apperror.Persistence(err)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, int, error) {
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	entries, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	return entries, total, nil
}

// Update corrects a manual entry. Reconciled debits are immutable.
func (s *Service) Update(ctx context.Context, kind Kind, id string, input EntryInput) (Entry, error) {
	if err := apperror.Struct(input); err != nil {
		return Entry{}, err
	}
	current, err := s.Get(ctx, kind, id)
	if err != nil {
		return Entry{}, err
	}
	if current.Reconciled() {
		return Entry{}, ErrReconciledEntry
	}
	next := input.entry(kind)
	next.ID = id
	out, err := s.store.Update(ctx, next)
	if err != nil {
		return Entry{}, apperror.Persistence(err)
	}
	s.audit.Record(ctx, audit.ActionUpdate, resourceFor(kind), id,
		fmt.Sprintf("%s corrected to %s", kind, out.Amount.StringFixed(2)))
	return out, nil
}

func (s *Service) Delete(ctx context.Context, kind Kind, id string) error {
	current, err := s.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if current.Reconciled() {
		return ErrReconciledEntry
	}
	if err := s.store.Delete(ctx, kind, id); err != nil {
		return apperror.Persistence(err)
	}
	s.audit.Record(ctx, audit.ActionDelete, resourceFor(kind), id,
		fmt.Sprintf("%s of %s deleted", kind, current.Amount.StringFixed(2)))
	return nil
}

func (s *Service) CashPosition(ctx context.Context) (Position, error) {
	return s.CashPositionForPeriod(ctx, time.Time{}, time.Time{})
}

// CashPositionForPeriod totals entries dated within [from, to]. Zero bounds are open.
func (s *Service) CashPositionForPeriod(ctx context.Context, from, to time.Time) (Position, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return Position{}, apperror.Invalid("to", "must not be before from")
	}
	credits, err := s.store.Sum(ctx, KindCredit, from, to)
	if err != nil {
		return Position{}, apperror.Persistence(err)
	}
	debits, err := s.store.Sum(ctx, KindDebit, from, to)
	if err != nil {
		return Position{}, apperror.Persistence(err)
	}
	return NewPosition(credits, debits), nil
}

// Statement collects every entry of one calendar month with its totals.
func (s *Service) Statement(ctx context.Context, year int, month time.Month) (Statement, error) {
	if month < time.January || month > time.December {
		return Statement{}, apperror.Invalid("month", "must be between 1 and 12")
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	entries, err := s.store.List(ctx, Filter{From: from, To: to})
	if err != nil {
		return Statement{}, apperror.Persistence(err)
	}
	pos, err := s.CashPositionForPeriod(ctx, from, to)
	if err != nil {
		return Statement{}, err
	}
	return Statement{Year: year, Month: month, Entries: entries, Position: pos}, nil
}

func validateFilter(filter Filter) error {
	var issues []apperror.FieldIssue
	if filter.Kind != "" && !filter.Kind.Valid() {
		issues = append(issues, apperror.FieldIssue{Field: "kind", Reason: "must be one of: Credit Debit"})
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		issues = append(issues, apperror.FieldIssue{Field: "to", Reason: "must not be before from"})
	}
	if filter.Amount != nil && !filter.Amount.GreaterThan(decimal.Zero) {
		issues = append(issues, apperror.FieldIssue{Field: "amount", Reason: "must be greater than 0"})
	}
	if len(issues) > 0 {
		return apperror.Validation(issues...)
	}
	return nil
}

func resourceFor(kind Kind) string {
	if kind == KindCredit {
		return audit.ResourceCredit
	}
	return audit.ResourceDebit
}
