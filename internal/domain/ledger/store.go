package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"backoffice/internal/platform/querier"
)

const unionQuery = `(
  SELECT 'Credit' AS kind, id::text AS id, entry_date, amount, description, category, payment_mode,
         reference_number, '' AS bill_file, '' AS paid_by, '' AS source_kind, '' AS source_id, created_at
  FROM credits
  UNION ALL
  SELECT 'Debit', id::text, entry_date, amount, description, category, payment_mode,
         reference_number, bill_file, paid_by, source_kind, source_id, created_at
  FROM debits
) l`

const entryColumns = `kind, id, entry_date, amount, description, category, payment_mode,
  reference_number, bill_file, paid_by, source_kind, source_id, created_at`

var _ StoreAPI = (*Store)(nil)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Insert(ctx context.Context, e Entry) (Entry, error) {
	var row pgx.Row
	switch e.Kind {
	case KindCredit:
		row = s.DB.QueryRow(ctx, `
      INSERT INTO credits (entry_date, amount, description, category, payment_mode, reference_number)
      VALUES ($1,$2,$3,$4,$5,$6)
      RETURNING 'Credit', id::text, entry_date, amount, description, category, payment_mode,
        reference_number, '', '', '', '', created_at
    `, e.Date, e.Amount, e.Description, e.Category, e.PaymentMode, e.Reference)
	case KindDebit:
		row = s.DB.QueryRow(ctx, `
      INSERT INTO debits (entry_date, amount, description, category, payment_mode, reference_number,
        bill_file, paid_by, source_kind, source_id)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
      RETURNING 'Debit', id::text, entry_date, amount, description, category, payment_mode,
        reference_number, bill_file, paid_by, source_kind, source_id, created_at
    `, e.Date, e.Amount, e.Description, e.Category, e.PaymentMode, e.Reference,
			e.BillFile, e.PaidBy, e.SourceKind, e.SourceID)
	default:
		return Entry{}, fmt.Errorf("unknown ledger kind %q", e.Kind)
	}
	return scanEntry(row)
}

func (s *Store) Get(ctx context.Context, kind Kind, id string) (Entry, error) {
	e, err := scanEntry(s.DB.QueryRow(ctx,
		"SELECT "+entryColumns+" FROM "+unionQuery+" WHERE kind = $1 AND id = $2", string(kind), id))
	if querier.IsNotFound(err) {
		return Entry{}, ErrEntryNotFound
	}
	return e, err
}

func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := buildWhere(filter)
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM "+unionQuery+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	where, args := buildWhere(filter)
	query := "SELECT " + entryColumns + " FROM " + unionQuery + where + " ORDER BY entry_date DESC, created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, e Entry) (Entry, error) {
	var row pgx.Row
	switch e.Kind {
	case KindCredit:
		row = s.DB.QueryRow(ctx, `
      UPDATE credits SET entry_date = $2, amount = $3, description = $4, category = $5,
        payment_mode = $6, reference_number = $7, updated_at = now()
      WHERE id = $1
      RETURNING 'Credit', id::text, entry_date, amount, description, category, payment_mode,
        reference_number, '', '', '', '', created_at
    `, e.ID, e.Date, e.Amount, e.Description, e.Category, e.PaymentMode, e.Reference)
	case KindDebit:
		row = s.DB.QueryRow(ctx, `
      UPDATE debits SET entry_date = $2, amount = $3, description = $4, category = $5,
        payment_mode = $6, reference_number = $7, bill_file = $8, paid_by = $9, updated_at = now()
      WHERE id = $1
      RETURNING 'Debit', id::text, entry_date, amount, description, category, payment_mode,
        reference_number, bill_file, paid_by, source_kind, source_id, created_at
    `, e.ID, e.Date, e.Amount, e.Description, e.Category, e.PaymentMode, e.Reference, e.BillFile, e.PaidBy)
	default:
		return Entry{}, fmt.Errorf("unknown ledger kind %q", e.Kind)
	}
	out, err := scanEntry(row)
	if querier.IsNotFound(err) {
		return Entry{}, ErrEntryNotFound
	}
	return out, err
}

func (s *Store) Delete(ctx context.Context, kind Kind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if querier.IsNotFound(err) {
		return ErrEntryNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *Store) Sum(ctx context.Context, kind Kind, from, to time.Time) (decimal.Decimal, error) {
	table, err := tableFor(kind)
	if err != nil {
		return decimal.Zero, err
	}
	query := "SELECT COALESCE(SUM(amount), 0) FROM " + table + " WHERE 1=1"
	var args []any
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}
	var total decimal.Decimal
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func tableFor(kind Kind) (string, error) {
	switch kind {
	case KindCredit:
		return "credits", nil
	case KindDebit:
		return "debits", nil
	}
	return "", fmt.Errorf("unknown ledger kind %q", kind)
}

func buildWhere(filter Filter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		where += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.PaidBy != "" {
		args = append(args, "%"+filter.PaidBy+"%")
		where += fmt.Sprintf(" AND paid_by ILIKE $%d", len(args))
	}
	if filter.Amount != nil {
		args = append(args, *filter.Amount)
		where += fmt.Sprintf(" AND amount = $%d", len(args))
	}
	return where, args
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var kind string
	err := row.Scan(&kind, &e.ID, &e.Date, &e.Amount, &e.Description, &e.Category, &e.PaymentMode,
		&e.Reference, &e.BillFile, &e.PaidBy, &e.SourceKind, &e.SourceID, &e.CreatedAt)
	e.Kind = Kind(kind)
	return e, err
}
