package payroll_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
	"backoffice/internal/domain/expense"
	"backoffice/internal/domain/payroll"
	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/db/dbtest"
	"backoffice/internal/platform/lock"
	"backoffice/internal/platform/outbox"
)

type pgFixture struct {
	pool *pgxpool.Pool
	svc  *payroll.Service
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	pool := dbtest.Open(t)
	recorder := audit.NewService(audit.NewStore(pool), zap.NewNop(), nil, 0)
	return &pgFixture{
		pool: pool,
		svc:  payroll.NewService(payroll.NewStore(pool), reconcile.New(nil), recorder, lock.Nop{}, time.Minute, zap.NewNop()),
	}
}

func (f *pgFixture) seedEmployee(t *testing.T, code, first string) employee.Employee {
	t.Helper()
	ctx := context.Background()
	emp, err := employee.NewStore(f.pool).Create(ctx, employee.CreateInput{EmployeeCode: code, FirstName: first, LastName: "Rao"})
	require.NoError(t, err)
	_, err = compensation.NewStore(f.pool).Upsert(ctx, structureFor(emp.ID))
	require.NoError(t, err)
	return emp
}

func (f *pgFixture) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func TestPostgresConcurrentPaidTransitionsWriteOneDebit(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	emp := f.seedEmployee(t, "E001", "Asha")
	claim, err := expense.NewStore(f.pool).Create(ctx, expense.Claim{
		EmployeeID:   emp.ID,
		Title:        "Client visit",
		Amount:       dec("500"),
		DateOccurred: time.Date(2026, time.September, 12, 0, 0, 0, 0, time.UTC),
		Status:       expense.StatusApproved,
	})
	require.NoError(t, err)

	rec, err := f.svc.Generate(ctx, septemberInput(emp.ID, payroll.StatusDraft))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SetStatus(ctx, rec.ID, payroll.StatusPaid)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	salaryRef := reconcile.SalaryReference(emp.ID, rec.PeriodEnd)
	assert.Equal(t, 1, f.count(t, "SELECT count(*) FROM debits WHERE reference_number = $1", salaryRef))
	assert.Equal(t, 1, f.count(t, "SELECT count(*) FROM debits WHERE reference_number = $1", reconcile.ExpenseClaimReference(claim.ID)))
	assert.Equal(t, 2, f.count(t, "SELECT count(*) FROM outbox_events WHERE event_type = $1", outbox.EventDebitRecorded))

	paid, err := f.svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	requireAmount(t, "38500.00", paid.Net)

	settled, err := expense.NewStore(f.pool).Get(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.StatusPaid, settled.Status)
}

func TestPostgresBulkGenerateTwiceThenBulkPaid(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	f.seedEmployee(t, "E001", "Asha")
	f.seedEmployee(t, "E002", "Ravi")

	first, err := f.svc.BulkGenerate(ctx, 2026, time.September)
	require.NoError(t, err)
	assert.Equal(t, payroll.BulkGenerateResult{Created: 2}, first)

	second, err := f.svc.BulkGenerate(ctx, 2026, time.September)
	require.NoError(t, err)
	assert.Equal(t, payroll.BulkGenerateResult{Skipped: 2}, second)

	records, total, err := f.svc.List(ctx, payroll.Filter{Year: 2026, Month: time.September})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, rec := range records {
		assert.Equal(t, payroll.StatusDraft, rec.Status)
		assert.True(t, rec.Gross.Equal(rec.Earnings.Total()), rec.EmployeeName)
		assert.True(t, rec.Net.Equal(rec.Gross.Sub(rec.TotalDeductions)), rec.EmployeeName)
	}

	paid, err := f.svc.BulkSetStatus(ctx, 2026, time.September, payroll.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, payroll.BulkStatusResult{Updated: 2, Debits: 2}, paid)

	again, err := f.svc.BulkSetStatus(ctx, 2026, time.September, payroll.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, payroll.BulkStatusResult{}, again)

	assert.Equal(t, 2, f.count(t, "SELECT count(*) FROM debits WHERE category = 'Salary'"))
}

func TestPostgresMalformedIDIsNotFound(t *testing.T) {
	f := newPGFixture(t)

	_, err := f.svc.Get(context.Background(), "not-a-uuid")
	assert.True(t, errors.Is(err, payroll.ErrPayrollNotFound))

	_, err = f.svc.SetStatus(context.Background(), "not-a-uuid", payroll.StatusPaid)
	assert.True(t, errors.Is(err, payroll.ErrPayrollNotFound))
}
