package memstore

import (
	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
	"backoffice/internal/domain/expense"
	"backoffice/internal/domain/ledger"
	"backoffice/internal/domain/payables"
	"backoffice/internal/domain/payroll"
	"backoffice/internal/platform/outbox"
)

var (
	_ employee.StoreAPI     = (*Employees)(nil)
	_ compensation.StoreAPI = (*Structures)(nil)
	_ ledger.StoreAPI       = (*Ledger)(nil)
	_ audit.StoreAPI        = (*Audit)(nil)
	_ outbox.RelayStore     = (*Outbox)(nil)
	_ expense.StoreAPI      = (*Claims)(nil)
	_ payables.StoreAPI     = (*Payables)(nil)
	_ payroll.StoreAPI      = (*Payroll)(nil)
)
