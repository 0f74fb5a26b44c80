// Package memstore keeps every domain table in memory. Transactions snapshot
// the whole state and restore it on error, which lets tests assert that a
// failed transition leaves nothing behind.
package memstore

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
	"backoffice/internal/domain/expense"
	"backoffice/internal/domain/ledger"
	"backoffice/internal/domain/payables"
	"backoffice/internal/domain/payroll"
	"backoffice/internal/platform/outbox"
)

type state struct {
	employees  map[string]employee.Employee
	structures map[string]compensation.Structure
	payrolls   map[string]payroll.Record
	claims     map[string]expense.Claim
	invoices   map[string]payables.Invoice
	orders     map[string]payables.PurchaseOrder
	entries    []ledger.Entry
	events     []outbox.Event
	audit      []audit.Entry
}

func newState() *state {
	return &state{
		employees:  map[string]employee.Employee{},
		structures: map[string]compensation.Structure{},
		payrolls:   map[string]payroll.Record{},
		claims:     map[string]expense.Claim{},
		invoices:   map[string]payables.Invoice{},
		orders:     map[string]payables.PurchaseOrder{},
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.employees {
		out.employees[k] = v
	}
	for k, v := range s.structures {
		out.structures[k] = v
	}
	for k, v := range s.payrolls {
		out.payrolls[k] = v
	}
	for k, v := range s.claims {
		out.claims[k] = v
	}
	for k, v := range s.invoices {
		out.invoices[k] = v
	}
	for k, v := range s.orders {
		out.orders[k] = v
	}
	out.entries = append([]ledger.Entry(nil), s.entries...)
	out.events = append([]outbox.Event(nil), s.events...)
	out.audit = append([]audit.Entry(nil), s.audit...)
	return out
}

// DB is the shared in-memory database behind every adapter.
type DB struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data *state

	failures map[string]error
	now      func() time.Time
}

func New() *DB {
	return &DB{data: newState(), failures: map[string]error{}, now: time.Now}
}

// SetClock replaces the time source used for created/paid timestamps.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

// FailOn makes every call of the named operation return err until cleared.
func (db *DB) FailOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failures[op] = err
}

func (db *DB) ClearFailures() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failures = map[string]error{}
}

// check must be called with mu held.
func (db *DB) check(op string) error {
	return db.failures[op]
}

func (db *DB) inTx(fn func() error) (err error) {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	snapshot := db.data.clone()
	db.mu.Unlock()

	restore := func() {
		db.mu.Lock()
		db.data = snapshot
		db.mu.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
	}()

	if err := fn(); err != nil {
		restore()
		return err
	}
	return nil
}

// Entries returns a copy of every ledger entry in insertion order.
func (db *DB) Entries() []ledger.Entry {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]ledger.Entry(nil), db.data.entries...)
}

// EntriesByReference returns the ledger entries carrying the reference.
func (db *DB) EntriesByReference(ref string) []ledger.Entry {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []ledger.Entry
	for _, e := range db.data.entries {
		if e.Reference == ref {
			out = append(out, e)
		}
	}
	return out
}

func (db *DB) Events() []outbox.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]outbox.Event(nil), db.data.events...)
}

func (db *DB) AuditEntries() []audit.Entry {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]audit.Entry(nil), db.data.audit...)
}

func newID() string {
	return uuid.NewString()
}

func fullName(e employee.Employee) string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
