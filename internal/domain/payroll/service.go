package payroll

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/expense"
	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/apperror"
	"backoffice/internal/platform/lock"
)

type Service struct {
	store      StoreAPI
	reconciler *reconcile.Reconciler
	audit      audit.Recorder
	locker     lock.Locker
	lockTTL    time.Duration
	log        *zap.Logger
}

func NewService(store StoreAPI, reconciler *reconcile.Reconciler, recorder audit.Recorder, locker lock.Locker, lockTTL time.Duration, log *zap.Logger) *Service {
	if locker == nil {
		locker = lock.Nop{}
	}
	return &Service{store: store, reconciler: reconciler, audit: recorder, locker: locker, lockTTL: lockTTL, log: log}
}

// Generate stores one payroll record from a submitted breakdown. A record
// created as Processed settles the employee's approved claims; one created as
// Paid also writes the salary debit first.
func (s *Service) Generate(ctx context.Context, input GenerateInput) (Record, error) {
	if err := apperror.Struct(input); err != nil {
		return Record{}, err
	}
	if input.PeriodEnd.Before(input.PeriodStart) {
		return Record{}, apperror.Invalid("periodEnd", "must not be before periodStart")
	}
	status := input.Status
	if status == "" {
		status = StatusDraft
	}

	var rec Record
	err := s.store.InTx(ctx, func(tx StoreAPI) error {
		if _, err := tx.Employee(ctx, input.EmployeeID); err != nil {
			return err
		}
		exists, err := tx.Exists(ctx, input.EmployeeID, input.PeriodEnd)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicatePayroll
		}

		draft := newRecord(input.EmployeeID, input.PeriodStart, input.PeriodEnd, input.Earnings, input.Deductions, input.Attendance)
		draft.Status = status
		if status == StatusPaid {
			draft.Status = StatusProcessed
		}
		rec, err = tx.Create(ctx, draft)
		if err != nil {
			return err
		}
		if status == StatusDraft {
			return nil
		}
		if status == StatusPaid {
			if _, err := s.reconciler.Apply(ctx, tx, rec, string(StatusPaid)); err != nil {
				return err
			}
		}
		if _, err := expense.Sweep(ctx, s.reconciler, tx, rec.EmployeeID); err != nil {
			return err
		}
		rec, err = tx.Get(ctx, rec.ID)
		return err
	})
	if err != nil {
		return Record{}, apperror.Persistence(err)
	}

	s.audit.Record(ctx, audit.ActionCreate, audit.ResourcePayroll, rec.ID,
		fmt.Sprintf("Generated %s payroll for %s (%s), net %s", rec.Status, rec.EmployeeName, rec.PeriodEnd.Format("January 2006"), rec.Net.StringFixed(2)))
	return rec, nil
}

// Prefill computes a pro-rated draft from the employee's salary structure.
// Approved claims are previewed as reimbursements but not consumed.
func (s *Service) Prefill(ctx context.Context, employeeID string, year int, month time.Month) (Prefill, error) {
	if err := validatePeriod(year, month); err != nil {
		return Prefill{}, err
	}
	if employeeID == "" {
		return Prefill{}, apperror.Invalid("employeeId", "is required")
	}
	out, err := s.prefill(ctx, s.store, employeeID, year, month)
	if err != nil {
		return Prefill{}, apperror.Persistence(err)
	}
	return out, nil
}

func (s *Service) prefill(ctx context.Context, store StoreAPI, employeeID string, year int, month time.Month) (Prefill, error) {
	emp, err := store.Employee(ctx, employeeID)
	if err != nil {
		return Prefill{}, err
	}
	structure, err := store.Structure(ctx, employeeID)
	if err != nil {
		return Prefill{}, err
	}
	reimbursements, err := store.ApprovedTotal(ctx, employeeID)
	if err != nil {
		return Prefill{}, err
	}

	days := DaysInMonth(year, month)
	worked := WorkedDays(emp, year, month)
	earnings, deductions := Prorate(structure, worked, days)
	earnings.Reimbursements = reimbursements
	gross, totalDeductions, net := ComputeTotals(earnings, deductions)
	start, end := PeriodBounds(year, month)

	return Prefill{
		EmployeeID:      employeeID,
		EmployeeName:    emp.FullName(),
		PeriodStart:     start,
		PeriodEnd:       end,
		WorkedDays:      worked,
		Factor:          ProrationFactor(worked, days),
		Earnings:        earnings,
		Deductions:      deductions,
		Attendance:      Attendance{DaysInMonth: days, LOPDays: days - worked},
		Gross:           gross,
		TotalDeductions: totalDeductions,
		Net:             net,
	}, nil
}

// BulkGenerate creates a Draft for every employee with a salary structure
// that has no record for the month yet. The batch runs in one transaction
// under a per-period lock.
func (s *Service) BulkGenerate(ctx context.Context, year int, month time.Month) (BulkGenerateResult, error) {
	if err := validatePeriod(year, month); err != nil {
		return BulkGenerateResult{}, err
	}
	release, err := s.locker.Acquire(ctx, periodLockKey(year, month), s.lockTTL)
	if err != nil {
		return BulkGenerateResult{}, err
	}
	defer release()

	_, end := PeriodBounds(year, month)
	var result BulkGenerateResult
	err = s.store.InTx(ctx, func(tx StoreAPI) error {
		structures, err := tx.Structures(ctx)
		if err != nil {
			return err
		}
		for _, structure := range structures {
			exists, err := tx.Exists(ctx, structure.EmployeeID, end)
			if err != nil {
				return err
			}
			if exists {
				result.Skipped++
				continue
			}
			pre, err := s.prefill(ctx, tx, structure.EmployeeID, year, month)
			if err != nil {
				return err
			}
			draft := newRecord(pre.EmployeeID, pre.PeriodStart, pre.PeriodEnd, pre.Earnings, pre.Deductions, pre.Attendance)
			draft.Status = StatusDraft
			if _, err := tx.Create(ctx, draft); err != nil {
				return err
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return BulkGenerateResult{}, apperror.Persistence(err)
	}

	s.audit.Record(ctx, audit.ActionBulkCreate, audit.ResourcePayroll, "",
		fmt.Sprintf("Bulk generated %d payroll drafts for %s", result.Created, end.Format("January 2006")))
	s.log.Info("bulk payroll generation finished",
		zap.Int("year", year), zap.Int("month", int(month)),
		zap.Int("created", result.Created), zap.Int("skipped", result.Skipped))
	return result, nil
}

// SetStatus applies an admin status change. Entering Paid writes the salary
// debit and settles the employee's approved claims in the same transaction.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Record, error) {
	if !status.Valid() {
		return Record{}, apperror.Invalid("status", "must be one of: Draft Processed Paid")
	}
	var (
		rec     Record
		changed bool
		debits  int
	)
	err := s.store.InTx(ctx, func(tx StoreAPI) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		changed, debits, err = s.transition(ctx, tx, current, status)
		if err != nil {
			return err
		}
		rec, err = tx.Get(ctx, id)
		return err
	})
	if err != nil {
		return Record{}, apperror.Persistence(err)
	}
	if changed {
		s.audit.Record(ctx, audit.ActionUpdate, audit.ResourcePayroll, id,
			fmt.Sprintf("Payroll for %s (%s) set to %s, %d debit(s) recorded", rec.EmployeeName, rec.PeriodEnd.Format("January 2006"), status, debits))
	}
	return rec, nil
}

// BulkSetStatus applies SetStatus semantics to every record of the month
// whose status differs from the target, in one transaction.
func (s *Service) BulkSetStatus(ctx context.Context, year int, month time.Month, status Status) (BulkStatusResult, error) {
	if err := validatePeriod(year, month); err != nil {
		return BulkStatusResult{}, err
	}
	if !status.Valid() {
		return BulkStatusResult{}, apperror.Invalid("status", "must be one of: Draft Processed Paid")
	}
	release, err := s.locker.Acquire(ctx, periodLockKey(year, month), s.lockTTL)
	if err != nil {
		return BulkStatusResult{}, err
	}
	defer release()

	var result BulkStatusResult
	err = s.store.InTx(ctx, func(tx StoreAPI) error {
		records, err := tx.ListForUpdate(ctx, year, month, status)
		if err != nil {
			return err
		}
		for _, rec := range records {
			changed, debits, err := s.transition(ctx, tx, rec, status)
			if err != nil {
				return fmt.Errorf("payroll %s: %w", rec.ID, err)
			}
			if changed {
				result.Updated++
			}
			result.Debits += debits
		}
		return nil
	})
	if err != nil {
		return BulkStatusResult{}, apperror.Persistence(err)
	}

	s.audit.Record(ctx, audit.ActionBulkUpdate, audit.ResourcePayroll, "",
		fmt.Sprintf("Bulk updated %d records to %s for %d/%d", result.Updated, status, int(month), year))
	return result, nil
}

// transition is the single status rule shared by single, bulk and creation paths.
func (s *Service) transition(ctx context.Context, tx StoreAPI, rec Record, status Status) (bool, int, error) {
	res, err := s.reconciler.Apply(ctx, tx, rec, string(status))
	if err != nil {
		return false, 0, err
	}
	if status != StatusPaid || res.Debit == nil {
		return res.Changed, 0, nil
	}
	claimDebits, err := expense.Sweep(ctx, s.reconciler, tx, rec.EmployeeID)
	if err != nil {
		return false, 0, err
	}
	return true, 1 + len(claimDebits), nil
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, apperror.Persistence(err)
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Record, int, error) {
	if filter.Month != 0 && (filter.Month < time.January || filter.Month > time.December) {
		return nil, 0, apperror.Invalid("month", "must be between 1 and 12")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperror.Invalid("status", "must be one of: Draft Processed Paid")
	}
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	records, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	return records, total, nil
}

// Update replaces the breakdown of a record that is not Paid and recomputes
// its totals.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Record, error) {
	if err := apperror.Struct(input); err != nil {
		return Record{}, err
	}
	var rec Record
	err := s.store.InTx(ctx, func(tx StoreAPI) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == StatusPaid {
			return ErrPaidImmutable
		}
		next := newRecord(current.EmployeeID, current.PeriodStart, current.PeriodEnd, input.Earnings, input.Deductions, input.Attendance)
		next.ID = id
		rec, err = tx.Update(ctx, next)
		return err
	})
	if err != nil {
		return Record{}, apperror.Persistence(err)
	}
	s.audit.Record(ctx, audit.ActionUpdate, audit.ResourcePayroll, id,
		fmt.Sprintf("Payroll for %s edited, net %s", rec.EmployeeName, rec.Net.StringFixed(2)))
	return rec, nil
}

func newRecord(employeeID string, start, end time.Time, e Earnings, d Deductions, a Attendance) Record {
	gross, deductions, net := ComputeTotals(e, d)
	return Record{
		EmployeeID:      employeeID,
		PeriodStart:     start,
		PeriodEnd:       end,
		Earnings:        e,
		Deductions:      d,
		Attendance:      a,
		Gross:           gross,
		TotalDeductions: deductions,
		Net:             net,
	}
}

func validatePeriod(year int, month time.Month) error {
	var issues []apperror.FieldIssue
	if month < time.January || month > time.December {
		issues = append(issues, apperror.FieldIssue{Field: "month", Reason: "must be between 1 and 12"})
	}
	if year < 2000 || year > 2100 {
		issues = append(issues, apperror.FieldIssue{Field: "year", Reason: "must be between 2000 and 2100"})
	}
	if len(issues) > 0 {
		return apperror.Validation(issues...)
	}
	return nil
}

func periodLockKey(year int, month time.Month) string {
	return fmt.Sprintf("payroll:%04d-%02d", year, int(month))
}
