package reconcile

import (
	"context"
	"fmt"

	"backoffice/internal/domain/ledger"
	"backoffice/internal/platform/outbox"
	"backoffice/internal/platform/querier"
)

var tables = map[Kind]string{
	KindPayroll:       "payroll_records",
	KindExpenseClaim:  "expense_claims",
	KindInvoice:       "invoices",
	KindPurchaseOrder: "purchase_orders",
}

var _ StoreAPI = (*Store)(nil)

type Store struct {
	DB      querier.Querier
	entries *ledger.Store
	events  *outbox.Store
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db, entries: ledger.NewStore(db), events: outbox.NewStore(db)}
}

func (s *Store) SetStatus(ctx context.Context, src Source, status string) error {
	table, err := tableFor(src.Kind)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, "UPDATE "+table+" SET status = $2, updated_at = now() WHERE id = $1", src.ID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", src.Kind, src.ID, ErrSourceNotFound)
	}
	return nil
}

func (s *Store) MarkPaid(ctx context.Context, src Source) (bool, error) {
	table, err := tableFor(src.Kind)
	if err != nil {
		return false, err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE `+table+` SET status = 'Paid', paid_at = now(), updated_at = now()
    WHERE id = $1 AND status <> 'Paid'
  `, src.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendDebit(ctx context.Context, entry ledger.Entry) (ledger.Entry, error) {
	return s.entries.Insert(ctx, entry)
}

func (s *Store) Enqueue(ctx context.Context, event outbox.Event) error {
	return s.events.Create(ctx, event)
}

func tableFor(kind Kind) (string, error) {
	table, ok := tables[kind]
	if !ok {
		return "", fmt.Errorf("unknown payable kind %q", kind)
	}
	return table, nil
}
