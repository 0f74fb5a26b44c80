package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/ledger"
	"backoffice/internal/domain/reconcile"
)

type Status string

const (
	StatusDraft     Status = "Draft"
	StatusProcessed Status = "Processed"
	StatusPaid      Status = reconcile.StatusPaid
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusProcessed, StatusPaid:
		return true
	}
	return false
}

type Earnings struct {
	Basic            decimal.Decimal `json:"basic" validate:"gte=0,cents"`
	HRA              decimal.Decimal `json:"hra" validate:"gte=0,cents"`
	Conveyance       decimal.Decimal `json:"conveyance" validate:"gte=0,cents"`
	Medical          decimal.Decimal `json:"medical" validate:"gte=0,cents"`
	SpecialAllowance decimal.Decimal `json:"specialAllowance" validate:"gte=0,cents"`
	Bonus            decimal.Decimal `json:"bonus" validate:"gte=0,cents"`
	Incentives       decimal.Decimal `json:"incentives" validate:"gte=0,cents"`
	Reimbursements   decimal.Decimal `json:"reimbursements" validate:"gte=0,cents"`
}

func (e Earnings) Total() decimal.Decimal {
	return decimal.Sum(e.Basic, e.HRA, e.Conveyance, e.Medical, e.SpecialAllowance, e.Bonus, e.Incentives, e.Reimbursements)
}

type Deductions struct {
	PF              decimal.Decimal `json:"pf" validate:"gte=0,cents"`
	ESI             decimal.Decimal `json:"esi" validate:"gte=0,cents"`
	ProfessionalTax decimal.Decimal `json:"professionalTax" validate:"gte=0,cents"`
	TDS             decimal.Decimal `json:"tds" validate:"gte=0,cents"`
	LossOfPay       decimal.Decimal `json:"lossOfPay" validate:"gte=0,cents"`
}

func (d Deductions) Total() decimal.Decimal {
	return decimal.Sum(d.PF, d.ESI, d.ProfessionalTax, d.TDS, d.LossOfPay)
}

// Attendance holds the payslip day counters A (days in month), B (arrear),
// C (loss-of-pay reversal) and D (loss of pay).
type Attendance struct {
	DaysInMonth int `json:"daysInMonth" validate:"gte=0,lte=31"`
	ArrearDays  int `json:"arrearDays" validate:"gte=0"`
	LOPRDays    int `json:"loprDays" validate:"gte=0"`
	LOPDays     int `json:"lopDays" validate:"gte=0"`
}

// NetDaysWorked is A + B + C - D.
func (a Attendance) NetDaysWorked() int {
	return a.DaysInMonth + a.ArrearDays + a.LOPRDays - a.LOPDays
}

type Record struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employeeId"`
	EmployeeName    string          `json:"employeeName"`
	PeriodStart     time.Time       `json:"periodStart"`
	PeriodEnd       time.Time       `json:"periodEnd"`
	Earnings        Earnings        `json:"earnings"`
	Deductions      Deductions      `json:"deductions"`
	Attendance      Attendance      `json:"attendance"`
	Gross           decimal.Decimal `json:"grossSalary"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	Net             decimal.Decimal `json:"netSalary"`
	Status          Status          `json:"status"`
	GeneratedAt     time.Time       `json:"generatedAt"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
}

func (r Record) Source() reconcile.Source {
	return reconcile.Source{Kind: reconcile.KindPayroll, ID: r.ID}
}

func (r Record) CurrentStatus() string {
	return string(r.Status)
}

func (r Record) Debit() ledger.Entry {
	return ledger.Entry{
		Amount:      r.Net,
		Description: fmt.Sprintf("Salary Payment: %s (%s)", r.EmployeeName, r.PeriodEnd.Format("Jan 2006")),
		Category:    ledger.CategorySalary,
		Reference:   reconcile.SalaryReference(r.EmployeeID, r.PeriodEnd),
		PaidBy:      r.EmployeeName,
	}
}

type GenerateInput struct {
	EmployeeID  string     `json:"employeeId" validate:"required"`
	PeriodStart time.Time  `json:"periodStart" validate:"required"`
	PeriodEnd   time.Time  `json:"periodEnd" validate:"required"`
	Earnings    Earnings   `json:"earnings"`
	Deductions  Deductions `json:"deductions"`
	Attendance  Attendance `json:"attendance"`
	Status      Status     `json:"status" validate:"omitempty,oneof=Draft Processed Paid"`
}

type UpdateInput struct {
	Earnings   Earnings   `json:"earnings"`
	Deductions Deductions `json:"deductions"`
	Attendance Attendance `json:"attendance"`
}

// Prefill is a computed draft that has not been stored.
type Prefill struct {
	EmployeeID      string          `json:"employeeId"`
	EmployeeName    string          `json:"employeeName"`
	PeriodStart     time.Time       `json:"periodStart"`
	PeriodEnd       time.Time       `json:"periodEnd"`
	WorkedDays      int             `json:"workedDays"`
	Factor          decimal.Decimal `json:"factor"`
	Earnings        Earnings        `json:"earnings"`
	Deductions      Deductions      `json:"deductions"`
	Attendance      Attendance      `json:"attendance"`
	Gross           decimal.Decimal `json:"grossSalary"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	Net             decimal.Decimal `json:"netSalary"`
}

type Filter struct {
	Year       int
	Month      time.Month
	Status     Status
	EmployeeID string
	Limit      int
	Offset     int
}

type BulkGenerateResult struct {
	Created int `json:"createdCount"`
	Skipped int `json:"skippedCount"`
}

type BulkStatusResult struct {
	Updated int `json:"updatedCount"`
	Debits  int `json:"debitsCreated"`
}
