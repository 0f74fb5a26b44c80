package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
	"backoffice/internal/domain/expense"
	"backoffice/internal/domain/payroll"
)

type Payroll struct {
	reconcileOps
	tx bool
}

func (db *DB) Payroll() *Payroll {
	return &Payroll{reconcileOps: reconcileOps{db: db}}
}

func (s *Payroll) InTx(_ context.Context, fn func(payroll.StoreAPI) error) error {
	if s.tx {
		return fn(s)
	}
	return s.db.inTx(func() error {
		return fn(&Payroll{reconcileOps: s.reconcileOps, tx: true})
	})
}

func (s *Payroll) Create(_ context.Context, rec payroll.Record) (payroll.Record, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check("CreatePayroll"); err != nil {
		return payroll.Record{}, err
	}
	if s.db.payrollExists(rec.EmployeeID, rec.PeriodEnd) {
		return payroll.Record{}, payroll.ErrDuplicatePayroll
	}
	rec.ID = newID()
	rec.GeneratedAt = s.db.now()
	s.db.data.payrolls[rec.ID] = rec
	return s.db.withPayrollName(rec), nil
}

func (s *Payroll) Get(_ context.Context, id string) (payroll.Record, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rec, ok := s.db.data.payrolls[id]
	if !ok {
		return payroll.Record{}, payroll.ErrPayrollNotFound
	}
	return s.db.withPayrollName(rec), nil
}

func (s *Payroll) GetForUpdate(ctx context.Context, id string) (payroll.Record, error) {
	return s.Get(ctx, id)
}

func (s *Payroll) Exists(_ context.Context, employeeID string, periodEnd time.Time) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.payrollExists(employeeID, periodEnd), nil
}

func (db *DB) payrollExists(employeeID string, periodEnd time.Time) bool {
	for _, rec := range db.data.payrolls {
		if rec.EmployeeID == employeeID && sameDay(rec.PeriodEnd, periodEnd) {
			return true
		}
	}
	return false
}

func (s *Payroll) Count(_ context.Context, filter payroll.Filter) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.filterPayrolls(filter)), nil
}

func (s *Payroll) List(_ context.Context, filter payroll.Filter) ([]payroll.Record, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := s.db.filterPayrolls(filter)
	sortPayrolls(out)
	return page(out, filter.Limit, filter.Offset), nil
}

func (s *Payroll) ListForUpdate(_ context.Context, year int, month time.Month, exclude payroll.Status) ([]payroll.Record, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []payroll.Record
	for _, rec := range s.db.filterPayrolls(payroll.Filter{Year: year, Month: month}) {
		if rec.Status != exclude {
			out = append(out, rec)
		}
	}
	sortPayrolls(out)
	return out, nil
}

func (db *DB) filterPayrolls(filter payroll.Filter) []payroll.Record {
	var out []payroll.Record
	for _, rec := range db.data.payrolls {
		if filter.Year > 0 && rec.PeriodEnd.Year() != filter.Year {
			continue
		}
		if filter.Month > 0 && rec.PeriodEnd.Month() != filter.Month {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, db.withPayrollName(rec))
	}
	return out
}

func sortPayrolls(out []payroll.Record) {
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PeriodEnd.Equal(out[j].PeriodEnd) {
			return out[i].PeriodEnd.After(out[j].PeriodEnd)
		}
		return out[i].EmployeeName < out[j].EmployeeName
	})
}

func (s *Payroll) Update(_ context.Context, rec payroll.Record) (payroll.Record, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check("UpdatePayroll"); err != nil {
		return payroll.Record{}, err
	}
	current, ok := s.db.data.payrolls[rec.ID]
	if !ok {
		return payroll.Record{}, payroll.ErrPayrollNotFound
	}
	current.Earnings = rec.Earnings
	current.Deductions = rec.Deductions
	current.Attendance = rec.Attendance
	current.Gross = rec.Gross
	current.TotalDeductions = rec.TotalDeductions
	current.Net = rec.Net
	s.db.data.payrolls[rec.ID] = current
	return s.db.withPayrollName(current), nil
}

func (s *Payroll) Employee(_ context.Context, id string) (employee.Employee, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	emp, ok := s.db.data.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (s *Payroll) Structure(_ context.Context, employeeID string) (compensation.Structure, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.structure(employeeID)
}

func (s *Payroll) Structures(_ context.Context) ([]compensation.Structure, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.listStructures(), nil
}

func (s *Payroll) ApprovedForUpdate(_ context.Context, employeeID string) ([]expense.Claim, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.approvedClaims(employeeID)
}

func (s *Payroll) ApprovedTotal(_ context.Context, employeeID string) (decimal.Decimal, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.approvedTotal(employeeID), nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
