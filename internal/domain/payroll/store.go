package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
	"backoffice/internal/domain/expense"
	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/querier"
)

const selectColumns = `p.id::text, p.employee_id::text, trim(e.first_name || ' ' || e.last_name),
  p.period_start, p.period_end,
  p.basic, p.hra, p.conveyance, p.medical, p.special_allowance, p.bonus, p.incentives, p.reimbursements,
  p.pf, p.esi, p.professional_tax, p.tds, p.lop,
  p.days_in_month, p.arrear_days, p.lopr_days, p.lop_days,
  p.gross_salary, p.total_deductions, p.net_salary, p.status, p.generated_at, p.paid_at`

const fromClause = " FROM payroll_records p JOIN employees e ON e.id = p.employee_id"

var _ StoreAPI = (*Store)(nil)

// Store composes the reconcile store with the claim, employee and structure
// stores so one transaction covers every write of a payroll transition.
type Store struct {
	*reconcile.Store
	claims     *expense.Store
	employees  *employee.Store
	structures *compensation.Store
}

func NewStore(db querier.Querier) *Store {
	return &Store{
		Store:      reconcile.NewStore(db),
		claims:     expense.NewStore(db),
		employees:  employee.NewStore(db),
		structures: compensation.NewStore(db),
	}
}

func (s *Store) InTx(ctx context.Context, fn func(StoreAPI) error) error {
	return querier.InTx(ctx, s.DB, func(q querier.Querier) error {
		return fn(NewStore(q))
	})
}

func (s *Store) Create(ctx context.Context, r Record) (Record, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payroll_records (
      employee_id, period_start, period_end,
      basic, hra, conveyance, medical, special_allowance, bonus, incentives, reimbursements,
      pf, esi, professional_tax, tds, lop,
      days_in_month, arrear_days, lopr_days, lop_days,
      gross_salary, total_deductions, net_salary, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
    RETURNING id::text
  `, r.EmployeeID, r.PeriodStart, r.PeriodEnd,
		r.Earnings.Basic, r.Earnings.HRA, r.Earnings.Conveyance, r.Earnings.Medical, r.Earnings.SpecialAllowance,
		r.Earnings.Bonus, r.Earnings.Incentives, r.Earnings.Reimbursements,
		r.Deductions.PF, r.Deductions.ESI, r.Deductions.ProfessionalTax, r.Deductions.TDS, r.Deductions.LossOfPay,
		r.Attendance.DaysInMonth, r.Attendance.ArrearDays, r.Attendance.LOPRDays, r.Attendance.LOPDays,
		r.Gross, r.TotalDeductions, r.Net, string(r.Status)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrDuplicatePayroll
		}
		return Record{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	return s.getOne(ctx, "SELECT "+selectColumns+fromClause+" WHERE p.id = $1", id)
}

func (s *Store) GetForUpdate(ctx context.Context, id string) (Record, error) {
	return s.getOne(ctx, "SELECT "+selectColumns+fromClause+" WHERE p.id = $1 FOR UPDATE OF p", id)
}

func (s *Store) getOne(ctx context.Context, query, id string) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRow(ctx, query, id))
	if querier.IsNotFound(err) {
		return Record{}, ErrPayrollNotFound
	}
	return rec, err
}

func (s *Store) Exists(ctx context.Context, employeeID string, periodEnd time.Time) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM payroll_records WHERE employee_id = $1 AND period_end = $2)
  `, employeeID, periodEnd).Scan(&exists)
	return exists, err
}

func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := buildWhere(filter)
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+fromClause+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Record, error) {
	where, args := buildWhere(filter)
	query := "SELECT " + selectColumns + fromClause + where + " ORDER BY p.period_end DESC, e.employee_code"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return s.queryRecords(ctx, query, args...)
}

func (s *Store) ListForUpdate(ctx context.Context, year int, month time.Month, exclude Status) ([]Record, error) {
	start, end := PeriodBounds(year, month)
	return s.queryRecords(ctx, "SELECT "+selectColumns+fromClause+`
    WHERE p.period_end BETWEEN $1 AND $2 AND p.status <> $3
    ORDER BY e.employee_code
    FOR UPDATE OF p`, start, end, string(exclude))
}

func (s *Store) Update(ctx context.Context, r Record) (Record, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_records SET
      basic = $2, hra = $3, conveyance = $4, medical = $5, special_allowance = $6,
      bonus = $7, incentives = $8, reimbursements = $9,
      pf = $10, esi = $11, professional_tax = $12, tds = $13, lop = $14,
      days_in_month = $15, arrear_days = $16, lopr_days = $17, lop_days = $18,
      gross_salary = $19, total_deductions = $20, net_salary = $21, updated_at = now()
    WHERE id = $1
  `, r.ID,
		r.Earnings.Basic, r.Earnings.HRA, r.Earnings.Conveyance, r.Earnings.Medical, r.Earnings.SpecialAllowance,
		r.Earnings.Bonus, r.Earnings.Incentives, r.Earnings.Reimbursements,
		r.Deductions.PF, r.Deductions.ESI, r.Deductions.ProfessionalTax, r.Deductions.TDS, r.Deductions.LossOfPay,
		r.Attendance.DaysInMonth, r.Attendance.ArrearDays, r.Attendance.LOPRDays, r.Attendance.LOPDays,
		r.Gross, r.TotalDeductions, r.Net)
	if querier.IsNotFound(err) {
		return Record{}, ErrPayrollNotFound
	}
	if err != nil {
		return Record{}, err
	}
	if tag.RowsAffected() == 0 {
		return Record{}, ErrPayrollNotFound
	}
	return s.Get(ctx, r.ID)
}

func (s *Store) Employee(ctx context.Context, id string) (employee.Employee, error) {
	return s.employees.Get(ctx, id)
}

func (s *Store) Structure(ctx context.Context, employeeID string) (compensation.Structure, error) {
	return s.structures.GetByEmployee(ctx, employeeID)
}

func (s *Store) Structures(ctx context.Context) ([]compensation.Structure, error) {
	return s.structures.List(ctx)
}

func (s *Store) ApprovedForUpdate(ctx context.Context, employeeID string) ([]expense.Claim, error) {
	return s.claims.ApprovedForUpdate(ctx, employeeID)
}

func (s *Store) ApprovedTotal(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	return s.claims.ApprovedTotal(ctx, employeeID)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func buildWhere(filter Filter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.Year > 0 {
		args = append(args, filter.Year)
		where += fmt.Sprintf(" AND EXTRACT(YEAR FROM p.period_end) = $%d", len(args))
	}
	if filter.Month > 0 {
		args = append(args, int(filter.Month))
		where += fmt.Sprintf(" AND EXTRACT(MONTH FROM p.period_end) = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND p.status = $%d", len(args))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND p.employee_id = $%d", len(args))
	}
	return where, args
}

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	var status string
	err := row.Scan(&r.ID, &r.EmployeeID, &r.EmployeeName, &r.PeriodStart, &r.PeriodEnd,
		&r.Earnings.Basic, &r.Earnings.HRA, &r.Earnings.Conveyance, &r.Earnings.Medical, &r.Earnings.SpecialAllowance,
		&r.Earnings.Bonus, &r.Earnings.Incentives, &r.Earnings.Reimbursements,
		&r.Deductions.PF, &r.Deductions.ESI, &r.Deductions.ProfessionalTax, &r.Deductions.TDS, &r.Deductions.LossOfPay,
		&r.Attendance.DaysInMonth, &r.Attendance.ArrearDays, &r.Attendance.LOPRDays, &r.Attendance.LOPDays,
		&r.Gross, &r.TotalDeductions, &r.Net, &status, &r.GeneratedAt, &r.PaidAt)
	r.Status = Status(status)
	return r, err
}
