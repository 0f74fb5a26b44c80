package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backoffice/internal/app/server"
	"backoffice/internal/auth"
	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
	"backoffice/internal/domain/expense"
	"backoffice/internal/domain/ledger"
	"backoffice/internal/domain/memstore"
	"backoffice/internal/domain/payables"
	"backoffice/internal/domain/payroll"
	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/config"
	"backoffice/internal/platform/lock"
	"backoffice/internal/platform/metrics"
)

const testSecret = "test-secret"

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"requestId"`
	Error     *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type harness struct {
	db     *memstore.DB
	router http.Handler
	emp    employee.Employee
}

func testConfig() config.Config {
	return config.Config{
		Environment:        "test",
		JWTSecret:          testSecret,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     true,
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := memstore.New()
	collector := metrics.New()
	auditSvc := audit.NewService(db.Audit(), zap.NewNop(), collector, 7*24*time.Hour)
	reconciler := reconcile.New(collector)

	svc := server.Services{
		Employees:    employee.NewService(db.Employees(), auditSvc),
		Compensation: compensation.NewService(db.Structures(), db.Employees(), auditSvc),
		Payroll:      payroll.NewService(db.Payroll(), reconciler, auditSvc, lock.Nop{}, time.Minute, zap.NewNop()),
		Expenses:     expense.NewService(db.Claims(), db.Employees(), reconciler, auditSvc),
		Payables:     payables.NewService(db.Payables(), reconciler, auditSvc),
		Ledger:       ledger.NewService(db.Ledger(), auditSvc),
		Audit:        auditSvc,
		Metrics:      collector,
	}
	emp := db.SeedEmployee(employee.Employee{EmployeeCode: "E001", FirstName: "Asha", LastName: "Rao"})
	return &harness{db: db, router: server.NewRouter(testConfig(), zap.NewNop(), svc), emp: emp}
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(testSecret, auth.Claims{UserID: "u-" + role, Email: role + "@example.com", Role: role}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, method, path, role string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, role))
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Equal(t, want, got.StringFixed(2))
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireAuthAndRole(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodGet, "/api/v1/payroll", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, env = h.do(t, http.MethodPost, "/api/v1/ledger/credits", auth.RoleViewer, map[string]any{})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rec, _ = h.do(t, http.MethodGet, "/api/v1/ledger", auth.RoleAdmin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPayrollPaidTwiceRecordsOneSalaryDebit(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodPost, "/api/v1/payroll", auth.RoleHR, map[string]any{
		"employeeId":  h.emp.ID,
		"periodStart": "2026-09-01",
		"periodEnd":   "2026-09-30",
		"earnings":    map[string]any{"basic": 30000, "hra": 12000},
		"deductions":  map[string]any{"pf": 1800, "professionalTax": 200},
		"attendance":  map[string]any{"daysInMonth": 30},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created payroll.Record
	decodeData(t, env, &created)
	assert.Equal(t, payroll.StatusDraft, created.Status)
	requireDecimal(t, "40000.00", created.Net)

	for i := 0; i < 2; i++ {
		rec, env = h.do(t, http.MethodPost, "/api/v1/payroll/"+created.ID+"/status", auth.RoleFinance, map[string]any{"status": "Paid"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	var paid payroll.Record
	decodeData(t, env, &paid)
	assert.Equal(t, payroll.StatusPaid, paid.Status)

	ref := reconcile.SalaryReference(h.emp.ID, time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC))
	debits := h.db.EntriesByReference(ref)
	require.Len(t, debits, 1)
	requireDecimal(t, "40000.00", debits[0].Amount)
	assert.Equal(t, "Salary", debits[0].Category)
}

func TestPayrollDuplicatePeriodIsConflict(t *testing.T) {
	h := newHarness(t)
	body := map[string]any{
		"employeeId":  h.emp.ID,
		"periodStart": "2026-09-01",
		"periodEnd":   "2026-09-30",
		"earnings":    map[string]any{"basic": 1000},
	}
	rec, _ := h.do(t, http.MethodPost, "/api/v1/payroll", auth.RoleHR, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := h.do(t, http.MethodPost, "/api/v1/payroll", auth.RoleHR, body)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
}

func TestPayrollBulkGenerateSkipsExistingRecords(t *testing.T) {
	h := newHarness(t)
	h.db.SeedStructure(compensation.Structure{
		EmployeeID: h.emp.ID,
		MonthlyCTC: decimal.RequireFromString("31000"),
		Basic:      decimal.RequireFromString("31000"),
	})

	rec, env := h.do(t, http.MethodPost, "/api/v1/payroll/bulk-generate?year=2026&month=10", auth.RoleHR, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var first payroll.BulkGenerateResult
	decodeData(t, env, &first)
	assert.Equal(t, 1, first.Created)

	rec, env = h.do(t, http.MethodPost, "/api/v1/payroll/bulk-generate?year=2026&month=10", auth.RoleHR, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var second payroll.BulkGenerateResult
	decodeData(t, env, &second)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Skipped)

	rec, _ = h.do(t, http.MethodPost, "/api/v1/payroll/bulk-generate?year=2026&month=13", auth.RoleHR, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayrollRegisterExport(t *testing.T) {
	h := newHarness(t)
	rec, _ := h.do(t, http.MethodGet, "/api/v1/payroll/register?year=2026&month=9", auth.RoleFinance, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payroll-register-2026-09.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestLedgerEntriesAndCashPosition(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.do(t, http.MethodPost, "/api/v1/ledger/credits", auth.RoleFinance, map[string]any{
		"date": "2026-09-01", "amount": "1000", "category": "Sales", "description": "Retainer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, env := h.do(t, http.MethodPost, "/api/v1/ledger/debits", auth.RoleFinance, map[string]any{
		"date": "2026-09-15", "amount": "400", "category": "Rent", "paidBy": "Office",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var debit ledger.Entry
	decodeData(t, env, &debit)
	assert.Equal(t, ledger.KindDebit, debit.Kind)

	rec, env = h.do(t, http.MethodGet, "/api/v1/ledger/cash-position", auth.RoleFinance, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pos ledger.Position
	decodeData(t, env, &pos)
	requireDecimal(t, "1000.00", pos.Credits)
	requireDecimal(t, "400.00", pos.Debits)
	requireDecimal(t, "600.00", pos.Balance)

	rec, env = h.do(t, http.MethodGet, "/api/v1/ledger/cash-position?from=2026-09-10&to=2026-09-30", auth.RoleFinance, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &pos)
	requireDecimal(t, "-400.00", pos.Balance)

	rec, _ = h.do(t, http.MethodGet, "/api/v1/ledger?kind=Credit", auth.RoleFinance, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	rec, _ = h.do(t, http.MethodDelete, "/api/v1/ledger/debits/"+debit.ID, auth.RoleFinance, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = h.do(t, http.MethodGet, "/api/v1/ledger/debits/"+debit.ID, auth.RoleFinance, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLedgerStatementRendersPDF(t *testing.T) {
	h := newHarness(t)
	rec, _ := h.do(t, http.MethodPost, "/api/v1/ledger/credits", auth.RoleFinance, map[string]any{
		"date": "2026-09-01", "amount": "250.50", "category": "Sales",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = h.do(t, http.MethodGet, "/api/v1/ledger/statement?year=2026&month=9", auth.RoleFinance, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestValidationErrorEnvelope(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodPost, "/api/v1/ledger/credits", auth.RoleFinance, map[string]any{
		"date": "2026-09-01", "amount": "0", "category": "Sales",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	assert.Contains(t, env.Error.Details, "fields")
	assert.Equal(t, rec.Header().Get("X-Request-ID"), env.RequestID)

	rec, env = h.do(t, http.MethodPost, "/api/v1/ledger/credits", auth.RoleFinance, map[string]any{
		"date": "2026-09-01", "amount": "10", "category": "Sales", "unexpected": true,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/v1/ledger/transfers", auth.RoleFinance, map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoicePaidTwiceRecordsOneDebit(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodPost, "/api/v1/invoices", auth.RoleFinance, map[string]any{
		"invoiceNumber": "2026-001",
		"vendor":        "Acme Supplies",
		"invoiceDate":   "2026-09-05",
		"dueDate":       "2026-10-05",
		"amount":        "1180.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var inv payables.Invoice
	decodeData(t, env, &inv)

	for i := 0; i < 2; i++ {
		rec, _ = h.do(t, http.MethodPost, "/api/v1/invoices/"+inv.ID+"/status", auth.RoleFinance, map[string]any{"status": "Paid"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	debits := h.db.EntriesByReference("INV-2026-001")
	require.Len(t, debits, 1)
	requireDecimal(t, "1180.00", debits[0].Amount)

	rec, env = h.do(t, http.MethodPost, "/api/v1/invoices/"+inv.ID+"/status", auth.RoleFinance, map[string]any{"status": "Unpaid"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotNil(t, env.Error)
}

func TestExpenseClaimApprovedThenPaid(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodPost, "/api/v1/expense-claims", auth.RoleViewer, map[string]any{
		"employeeId":   h.emp.ID,
		"title":        "Client visit taxi",
		"category":     "Travel",
		"amount":       "350",
		"dateOccurred": "2026-09-12",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var claim expense.Claim
	decodeData(t, env, &claim)
	assert.Equal(t, expense.StatusPending, claim.Status)

	path := fmt.Sprintf("/api/v1/expense-claims/%s/status", claim.ID)
	rec, _ = h.do(t, http.MethodPost, path, auth.RoleViewer, map[string]any{"status": "Approved"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = h.do(t, http.MethodPost, path, auth.RoleHR, map[string]any{"status": "Approved"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, env = h.do(t, http.MethodPost, path, auth.RoleFinance, map[string]any{"status": "Paid"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, env, &claim)
	assert.Equal(t, expense.StatusPaid, claim.Status)

	debits := h.db.EntriesByReference(reconcile.ExpenseClaimReference(claim.ID))
	require.Len(t, debits, 1)
	requireDecimal(t, "350.00", debits[0].Amount)
}

func TestAuditTrailListsActorAttributedEntries(t *testing.T) {
	h := newHarness(t)
	rec, _ := h.do(t, http.MethodPost, "/api/v1/ledger/credits", auth.RoleFinance, map[string]any{
		"date": "2026-09-01", "amount": "75", "category": "Interest",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = h.do(t, http.MethodGet, "/api/v1/audit", auth.RoleFinance, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := h.do(t, http.MethodGet, "/api/v1/audit?actor=finance@example.com", auth.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var entries []audit.Entry
	decodeData(t, env, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionCreate, entries[0].Action)
	assert.Equal(t, audit.ResourceCredit, entries[0].ResourceType)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	rec, _ := h.do(t, http.MethodGet, "/api/v1/metrics", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := h.do(t, http.MethodGet, "/api/v1/metrics", auth.RoleViewer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot map[string]any
	decodeData(t, env, &snapshot)
	assert.NotEmpty(t, snapshot)
}
