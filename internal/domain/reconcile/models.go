package reconcile

import (
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/ledger"
)

type Kind string

const (
	KindPayroll       Kind = "payroll"
	KindExpenseClaim  Kind = "expense_claim"
	KindInvoice       Kind = "invoice"
	KindPurchaseOrder Kind = "purchase_order"
)

// StatusPaid is the terminal status shared by every payable entity.
const StatusPaid = "Paid"

type Source struct {
	Kind Kind
	ID   string
}

// Payable is an entity whose lifecycle ends in Paid and whose payment is
// mirrored by one ledger debit.
type Payable interface {
	Source() Source
	CurrentStatus() string
	// Debit describes the ledger entry to write when the entity is paid.
	// Date, payment mode and source fields are filled by the reconciler when empty.
	Debit() ledger.Entry
}

type Result struct {
	Changed bool
	Debit   *ledger.Entry
}

// DebitEvent is the outbox payload published for every reconciled debit.
type DebitEvent struct {
	EntryID    string          `json:"entryId"`
	SourceKind Kind            `json:"sourceKind"`
	SourceID   string          `json:"sourceId"`
	Reference  string          `json:"reference"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
}
