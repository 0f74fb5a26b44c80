package audit

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/platform/querier"
)

const (
	ActionCreate     = "CREATE"
	ActionUpdate     = "UPDATE"
	ActionDelete     = "DELETE"
	ActionBulkCreate = "BULK_CREATE"
	ActionBulkUpdate = "BULK_UPDATE"
)

const (
	ResourcePayroll         = "Payroll"
	ResourceSalaryStructure = "SalaryStructure"
	ResourceExpenseClaim    = "ExpenseClaim"
	ResourceInvoice         = "Invoice"
	ResourcePurchaseOrder   = "PurchaseOrder"
	ResourceCredit          = "Credit"
	ResourceDebit           = "Debit"
	ResourceEmployee        = "Employee"
)

type Entry struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId,omitempty"`
	Details      string    `json:"details"`
	PerformedBy  string    `json:"performedBy"`
	RequestID    string    `json:"requestId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Filter struct {
	Action string
	Date   time.Time
	Actor  string
}

type StoreAPI interface {
	Insert(ctx context.Context, entry Entry) error
	Count(ctx context.Context, filter Filter) (int, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

var _ StoreAPI = (*Store)(nil)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Insert(ctx context.Context, entry Entry) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_log_entries (action, resource_type, resource_id, details, performed_by, request_id)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, entry.Action, entry.ResourceType, entry.ResourceID, entry.Details, entry.PerformedBy, entry.RequestID)
	return err
}

func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error) {
	query, args := buildBaseQuery("SELECT id::text, action, resource_type, resource_id, details, performed_by, request_id, created_at", filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.ResourceType, &e.ResourceID, &e.Details, &e.PerformedBy, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM audit_log_entries WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_log_entries WHERE 1=1"
	var args []any
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if !filter.Date.IsZero() {
		args = append(args, filter.Date.Format("2006-01-02"))
		query += fmt.Sprintf(" AND created_at::date = $%d::date", len(args))
	}
	if filter.Actor != "" {
		args = append(args, "%"+filter.Actor+"%")
		query += fmt.Sprintf(" AND performed_by ILIKE $%d", len(args))
	}
	return query, args
}
