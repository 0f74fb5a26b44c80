package expense

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/querier"
)

const selectColumns = `c.id::text, c.employee_id::text, trim(e.first_name || ' ' || e.last_name), c.title,
  c.category, c.description, c.amount, c.date_occurred, c.status, c.approved_by, c.rejection_reason,
  c.applied_at, c.paid_at`

const fromClause = " FROM expense_claims c JOIN employees e ON e.id = c.employee_id"

var _ StoreAPI = (*Store)(nil)

type Store struct {
	*reconcile.Store
}

func NewStore(db querier.Querier) *Store {
	return &Store{Store: reconcile.NewStore(db)}
}

func (s *Store) InTx(ctx context.Context, fn func(StoreAPI) error) error {
	return querier.InTx(ctx, s.DB, func(q querier.Querier) error {
		return fn(NewStore(q))
	})
}

func (s *Store) Create(ctx context.Context, c Claim) (Claim, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO expense_claims (employee_id, title, category, description, amount, date_occurred, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id::text
  `, c.EmployeeID, c.Title, c.Category, c.Description, c.Amount, c.DateOccurred, string(c.Status)).Scan(&id)
	if err != nil {
		return Claim{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id string) (Claim, error) {
	return s.getOne(ctx, "SELECT "+selectColumns+fromClause+" WHERE c.id = $1", id)
}

func (s *Store) GetForUpdate(ctx context.Context, id string) (Claim, error) {
	return s.getOne(ctx, "SELECT "+selectColumns+fromClause+" WHERE c.id = $1 FOR UPDATE OF c", id)
}

func (s *Store) getOne(ctx context.Context, query, id string) (Claim, error) {
	claim, err := scanClaim(s.DB.QueryRow(ctx, query, id))
	if querier.IsNotFound(err) {
		return Claim{}, ErrClaimNotFound
	}
	return claim, err
}

func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := buildWhere(filter)
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+fromClause+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Claim, error) {
	where, args := buildWhere(filter)
	query := "SELECT " + selectColumns + fromClause + where + " ORDER BY c.applied_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return s.queryClaims(ctx, query, args...)
}

func (s *Store) ApprovedForUpdate(ctx context.Context, employeeID string) ([]Claim, error) {
	return s.queryClaims(ctx, "SELECT "+selectColumns+fromClause+`
    WHERE c.employee_id = $1 AND c.status = 'Approved'
    ORDER BY c.applied_at
    FOR UPDATE OF c`, employeeID)
}

func (s *Store) ApprovedTotal(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(amount), 0) FROM expense_claims
    WHERE employee_id = $1 AND status = 'Approved'
  `, employeeID).Scan(&total)
	return total, err
}

func (s *Store) SetReview(ctx context.Context, id, reviewer, reason string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE expense_claims SET approved_by = $2, rejection_reason = $3, updated_at = now()
    WHERE id = $1
  `, id, reviewer, reason)
	if querier.IsNotFound(err) {
		return ErrClaimNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClaimNotFound
	}
	return nil
}

func (s *Store) queryClaims(ctx context.Context, query string, args ...any) ([]Claim, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, claim)
	}
	return out, rows.Err()
}

func buildWhere(filter Filter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND c.employee_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND c.status = $%d", len(args))
	}
	return where, args
}

func scanClaim(row pgx.Row) (Claim, error) {
	var c Claim
	var status string
	err := row.Scan(&c.ID, &c.EmployeeID, &c.EmployeeName, &c.Title, &c.Category, &c.Description, &c.Amount,
		&c.DateOccurred, &status, &c.ApprovedBy, &c.RejectionReason, &c.AppliedAt, &c.PaidAt)
	c.Status = Status(status)
	return c, err
}
