package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindCredit Kind = "Credit"
	KindDebit  Kind = "Debit"
)

func (k Kind) Valid() bool {
	return k == KindCredit || k == KindDebit
}

const (
	CategorySalary        = "Salary"
	CategoryExpenseClaim  = "Expense Claim"
	CategoryVendorPayment = "Vendor Payment"
	CategoryProcurement   = "Procurement"

	PaymentModeBankTransfer = "Bank Transfer"
)

// Entry is a single cash movement. BillFile, PaidBy and the Source fields
// only apply to debits; SourceKind is empty for manual entries.
type Entry struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	PaymentMode string          `json:"paymentMode"`
	Reference   string          `json:"referenceNumber"`
	BillFile    string          `json:"billFile,omitempty"`
	PaidBy      string          `json:"paidBy,omitempty"`
	SourceKind  string          `json:"sourceKind,omitempty"`
	SourceID    string          `json:"sourceId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (e Entry) Reconciled() bool {
	return e.Kind == KindDebit && e.SourceKind != ""
}

type EntryInput struct {
	Date        time.Time       `json:"date" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0,cents"`
	Description string          `json:"description" validate:"max=500"`
	Category    string          `json:"category" validate:"required,max=128"`
	PaymentMode string          `json:"paymentMode" validate:"max=64"`
	Reference   string          `json:"referenceNumber" validate:"max=128"`
	BillFile    string          `json:"billFile" validate:"max=512"`
	PaidBy      string          `json:"paidBy" validate:"max=128"`
}

func (in EntryInput) entry(kind Kind) Entry {
	e := Entry{
		Kind:        kind,
		Date:        in.Date,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		PaymentMode: in.PaymentMode,
		Reference:   in.Reference,
	}
	if kind == KindDebit {
		e.BillFile = in.BillFile
		e.PaidBy = in.PaidBy
	}
	return e
}

type Filter struct {
	Kind     Kind
	From     time.Time
	To       time.Time
	Category string
	PaidBy   string
	Amount   *decimal.Decimal
	Limit    int
	Offset   int
}

// Position is the cash position over a window: Balance = Credits - Debits.
type Position struct {
	Credits decimal.Decimal `json:"credits"`
	Debits  decimal.Decimal `json:"debits"`
	Balance decimal.Decimal `json:"balance"`
}

func NewPosition(credits, debits decimal.Decimal) Position {
	return Position{Credits: credits, Debits: debits, Balance: credits.Sub(debits)}
}

// Statement is the month view rendered by the PDF export.
type Statement struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Entries  []Entry    `json:"entries"`
	Position Position   `json:"position"`
}
