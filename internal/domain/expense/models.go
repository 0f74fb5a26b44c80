package expense

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/ledger"
	"backoffice/internal/domain/reconcile"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
	StatusPaid     Status = reconcile.StatusPaid
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusPaid:
		return true
	}
	return false
}

type Claim struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employeeId"`
	EmployeeName    string          `json:"employeeName"`
	Title           string          `json:"title"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	DateOccurred    time.Time       `json:"dateOccurred"`
	Status          Status          `json:"status"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	AppliedAt       time.Time       `json:"appliedAt"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
}

func (c Claim) Source() reconcile.Source {
	return reconcile.Source{Kind: reconcile.KindExpenseClaim, ID: c.ID}
}

func (c Claim) CurrentStatus() string {
	return string(c.Status)
}

func (c Claim) Debit() ledger.Entry {
	return ledger.Entry{
		Amount:      c.Amount,
		Description: fmt.Sprintf("Expense Claim: %s - %s", c.Title, c.EmployeeName),
		Category:    ledger.CategoryExpenseClaim,
		Reference:   reconcile.ExpenseClaimReference(c.ID),
		PaidBy:      c.EmployeeName,
	}
}

// payrollSettled is a claim paid out as part of a payroll run.
type payrollSettled struct {
	Claim
}

func (c payrollSettled) Debit() ledger.Entry {
	entry := c.Claim.Debit()
	entry.Description = fmt.Sprintf("Payroll Expense: %s - %s", c.Title, c.EmployeeName)
	return entry
}

type SubmitInput struct {
	EmployeeID   string          `json:"employeeId" validate:"required"`
	Title        string          `json:"title" validate:"required,max=200"`
	Category     string          `json:"category" validate:"max=128"`
	Description  string          `json:"description" validate:"max=1000"`
	Amount       decimal.Decimal `json:"amount" validate:"gt=0,cents"`
	DateOccurred time.Time       `json:"dateOccurred" validate:"required"`
}

type Filter struct {
	EmployeeID string
	Status     Status
	Limit      int
	Offset     int
}
