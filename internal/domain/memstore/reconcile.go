package memstore

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
	"backoffice/internal/domain/expense"
	"backoffice/internal/domain/ledger"
	"backoffice/internal/domain/payables"
	"backoffice/internal/domain/payroll"
	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/outbox"
)

// reconcileOps implements reconcile.StoreAPI over every payable table.
type reconcileOps struct {
	db *DB
}

func (r reconcileOps) SetStatus(_ context.Context, src reconcile.Source, status string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.check("SetStatus"); err != nil {
		return err
	}
	return r.db.setStatus(src, status, false)
}

func (r reconcileOps) MarkPaid(_ context.Context, src reconcile.Source) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.check("MarkPaid"); err != nil {
		return false, err
	}
	current, err := r.db.statusOf(src)
	if err != nil {
		return false, err
	}
	if current == reconcile.StatusPaid {
		return false, nil
	}
	return true, r.db.setStatus(src, reconcile.StatusPaid, true)
}

func (r reconcileOps) AppendDebit(_ context.Context, entry ledger.Entry) (ledger.Entry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.check("AppendDebit"); err != nil {
		return ledger.Entry{}, err
	}
	return r.db.insertEntry(entry), nil
}

func (r reconcileOps) Enqueue(_ context.Context, event outbox.Event) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.check("Enqueue"); err != nil {
		return err
	}
	event.CreatedAt = r.db.now()
	r.db.data.events = append(r.db.data.events, event)
	return nil
}

func (db *DB) insertEntry(entry ledger.Entry) ledger.Entry {
	entry.ID = newID()
	entry.CreatedAt = db.now()
	db.data.entries = append(db.data.entries, entry)
	return entry
}

func (db *DB) statusOf(src reconcile.Source) (string, error) {
	switch src.Kind {
	case reconcile.KindPayroll:
		if rec, ok := db.data.payrolls[src.ID]; ok {
			return string(rec.Status), nil
		}
	case reconcile.KindExpenseClaim:
		if c, ok := db.data.claims[src.ID]; ok {
			return string(c.Status), nil
		}
	case reconcile.KindInvoice:
		if inv, ok := db.data.invoices[src.ID]; ok {
			return string(inv.Status), nil
		}
	case reconcile.KindPurchaseOrder:
		if po, ok := db.data.orders[src.ID]; ok {
			return string(po.Status), nil
		}
	default:
		return "", fmt.Errorf("unknown payable kind %q", src.Kind)
	}
	return "", fmt.Errorf("%s %s: %w", src.Kind, src.ID, reconcile.ErrSourceNotFound)
}

func (db *DB) setStatus(src reconcile.Source, status string, paid bool) error {
	if _, err := db.statusOf(src); err != nil {
		return err
	}
	var paidAt *time.Time
	if paid {
		now := db.now()
		paidAt = &now
	}
	switch src.Kind {
	case reconcile.KindPayroll:
		rec := db.data.payrolls[src.ID]
		rec.Status = payroll.Status(status)
		if paid {
			rec.PaidAt = paidAt
		}
		db.data.payrolls[src.ID] = rec
	case reconcile.KindExpenseClaim:
		c := db.data.claims[src.ID]
		c.Status = expense.Status(status)
		if paid {
			c.PaidAt = paidAt
		}
		db.data.claims[src.ID] = c
	case reconcile.KindInvoice:
		inv := db.data.invoices[src.ID]
		inv.Status = payables.InvoiceStatus(status)
		if paid {
			inv.PaidAt = paidAt
		}
		db.data.invoices[src.ID] = inv
	case reconcile.KindPurchaseOrder:
		po := db.data.orders[src.ID]
		po.Status = payables.POStatus(status)
		if paid {
			po.PaidAt = paidAt
		}
		db.data.orders[src.ID] = po
	}
	return nil
}

// Seed helpers write rows directly, bypassing services and failure hooks.

func (db *DB) SeedEmployee(e employee.Employee) employee.Employee {
	db.mu.Lock()
	defer db.mu.Unlock()
	if e.ID == "" {
		e.ID = newID()
	}
	e.CreatedAt = db.now()
	db.data.employees[e.ID] = e
	return e
}

func (db *DB) SeedStructure(s compensation.Structure) compensation.Structure {
	db.mu.Lock()
	defer db.mu.Unlock()
	if s.ID == "" {
		s.ID = newID()
	}
	s.UpdatedAt = db.now()
	db.data.structures[s.EmployeeID] = s
	return s
}

func (db *DB) SeedClaim(c expense.Claim) expense.Claim {
	db.mu.Lock()
	defer db.mu.Unlock()
	if c.ID == "" {
		c.ID = newID()
	}
	c.AppliedAt = db.now()
	db.data.claims[c.ID] = c
	return db.withClaimName(c)
}

func (db *DB) SeedPayroll(rec payroll.Record) payroll.Record {
	db.mu.Lock()
	defer db.mu.Unlock()
	if rec.ID == "" {
		rec.ID = newID()
	}
	rec.GeneratedAt = db.now()
	db.data.payrolls[rec.ID] = rec
	return db.withPayrollName(rec)
}

func (db *DB) withClaimName(c expense.Claim) expense.Claim {
	if emp, ok := db.data.employees[c.EmployeeID]; ok {
		c.EmployeeName = fullName(emp)
	}
	return c
}

func (db *DB) withPayrollName(rec payroll.Record) payroll.Record {
	if emp, ok := db.data.employees[rec.EmployeeID]; ok {
		rec.EmployeeName = fullName(emp)
	}
	return rec
}
