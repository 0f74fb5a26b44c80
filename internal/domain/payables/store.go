package payables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/querier"
)

const invoiceColumns = `id::text, invoice_number, vendor, invoice_date, due_date, amount, description,
  file_path, status, created_at, paid_at`

const poColumns = `id::text, po_number, vendor, order_date, items_json, tax_percentage, total_amount,
  notes, status, created_at, paid_at`

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

func (s *Store) CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error) {
	out, err := scanInvoice(s.DB.QueryRow(ctx, `
    INSERT INTO invoices (invoice_number, vendor, invoice_date, due_date, amount, description, file_path, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING `+invoiceColumns,
		inv.InvoiceNumber, inv.Vendor, inv.InvoiceDate, inv.DueDate, inv.Amount, inv.Description, inv.FilePath,
		string(inv.Status)))
	if isUniqueViolation(err) {
		return Invoice{}, ErrDuplicateInvoice
	}
	return out, err
}

func (s *Store) GetInvoice(ctx context.Context, id string) (Invoice, error) {
	return s.getInvoice(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id)
}

func (s *Store) GetInvoiceForUpdate(ctx context.Context, id string) (Invoice, error) {
	return s.getInvoice(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = $1 FOR UPDATE", id)
}

func (s *Store) getInvoice(ctx context.Context, query, id string) (Invoice, error) {
	out, err := scanInvoice(s.DB.QueryRow(ctx, query, id))
	if querier.IsNotFound(err) {
		return Invoice{}, ErrInvoiceNotFound
	}
	return out, err
}

func (s *Store) CountInvoices(ctx context.Context, filter InvoiceFilter) (int, error) {
	where, args := documentWhere(string(filter.Status), filter.Vendor)
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM invoices"+where, args...).Scan(&total)
	return total, err
}

func (s *Store) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, error) {
	where, args := documentWhere(string(filter.Status), filter.Vendor)
	query := "SELECT " + invoiceColumns + " FROM invoices" + where + " ORDER BY invoice_date DESC, created_at DESC"
	query, args = paginate(query, args, filter.Limit, filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (s *Store) CreatePurchaseOrder(ctx context.Context, po PurchaseOrder) (PurchaseOrder, error) {
	items, err := json.Marshal(po.Items)
	if err != nil {
		return PurchaseOrder{}, err
	}
	out, err := scanPurchaseOrder(s.DB.QueryRow(ctx, `
    INSERT INTO purchase_orders (po_number, vendor, order_date, items_json, tax_percentage, total_amount, notes, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING `+poColumns,
		po.PONumber, po.Vendor, po.OrderDate, items, po.TaxPercentage, po.TotalAmount, po.Notes, string(po.Status)))
	if isUniqueViolation(err) {
		return PurchaseOrder{}, ErrDuplicatePurchaseOrder
	}
	return out, err
}

func (s *Store) GetPurchaseOrder(ctx context.Context, id string) (PurchaseOrder, error) {
	return s.getPurchaseOrder(ctx, "SELECT "+poColumns+" FROM purchase_orders WHERE id = $1", id)
}

func (s *Store) GetPurchaseOrderForUpdate(ctx context.Context, id string) (PurchaseOrder, error) {
	return s.getPurchaseOrder(ctx, "SELECT "+poColumns+" FROM purchase_orders WHERE id = $1 FOR UPDATE", id)
}

func (s *Store) getPurchaseOrder(ctx context.Context, query, id string) (PurchaseOrder, error) {
	out, err := scanPurchaseOrder(s.DB.QueryRow(ctx, query, id))
	if querier.IsNotFound(err) {
		return PurchaseOrder{}, ErrPurchaseOrderNotFound
	}
	return out, err
}

func (s *Store) CountPurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) (int, error) {
	where, args := documentWhere(string(filter.Status), filter.Vendor)
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM purchase_orders"+where, args...).Scan(&total)
	return total, err
}

func (s *Store) ListPurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, error) {
	where, args := documentWhere(string(filter.Status), filter.Vendor)
	query := "SELECT " + poColumns + " FROM purchase_orders" + where + " ORDER BY order_date DESC, created_at DESC"
	query, args = paginate(query, args, filter.Limit, filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PurchaseOrder
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, po)
	}
	return out, rows.Err()
}

func documentWhere(status, vendor string) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if vendor != "" {
		args = append(args, "%"+vendor+"%")
		where += fmt.Sprintf(" AND vendor ILIKE $%d", len(args))
	}
	return where, args
}

func paginate(query string, args []any, limit, offset int) (string, []any) {
	if limit <= 0 {
		return query, args
	}
	args = append(args, limit, offset)
	return query + fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var status string
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.Vendor, &inv.InvoiceDate, &inv.DueDate, &inv.Amount,
		&inv.Description, &inv.FilePath, &status, &inv.CreatedAt, &inv.PaidAt)
	inv.Status = InvoiceStatus(status)
	return inv, err
}

func scanPurchaseOrder(row pgx.Row) (PurchaseOrder, error) {
	var po PurchaseOrder
	var status string
	var items []byte
	err := row.Scan(&po.ID, &po.PONumber, &po.Vendor, &po.OrderDate, &items, &po.TaxPercentage, &po.TotalAmount,
		&po.Notes, &status, &po.CreatedAt, &po.PaidAt)
	if err != nil {
		return PurchaseOrder{}, err
	}
	po.Status = POStatus(status)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &po.Items); err != nil {
			return PurchaseOrder{}, err
		}
	}
	return po, nil
}
