package payables

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/ledger"
	"backoffice/internal/domain/reconcile"
)

type InvoiceStatus string

const (
	InvoiceUnpaid    InvoiceStatus = "Unpaid"
	InvoiceOverdue   InvoiceStatus = "Overdue"
	InvoiceCancelled InvoiceStatus = "Cancelled"
	InvoicePaid      InvoiceStatus = reconcile.StatusPaid
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceUnpaid, InvoiceOverdue, InvoiceCancelled, InvoicePaid:
		return true
	}
	return false
}

type POStatus string

const (
	PODraft     POStatus = "Draft"
	POSent      POStatus = "Sent"
	POApproved  POStatus = "Approved"
	POCompleted POStatus = "Completed"
	POCancelled POStatus = "Cancelled"
	POPaid      POStatus = reconcile.StatusPaid
)

func (s POStatus) Valid() bool {
	switch s {
	case PODraft, POSent, POApproved, POCompleted, POCancelled, POPaid:
		return true
	}
	return false
}

type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Vendor        string          `json:"vendor"`
	InvoiceDate   time.Time       `json:"invoiceDate"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	FilePath      string          `json:"filePath,omitempty"`
	Status        InvoiceStatus   `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
}

func (i Invoice) Source() reconcile.Source {
	return reconcile.Source{Kind: reconcile.KindInvoice, ID: i.ID}
}

func (i Invoice) CurrentStatus() string {
	return string(i.Status)
}

func (i Invoice) Debit() ledger.Entry {
	return ledger.Entry{
		Amount:      i.Amount,
		Description: fmt.Sprintf("Invoice Payment: %s - %s", i.InvoiceNumber, i.Vendor),
		Category:    ledger.CategoryVendorPayment,
		Reference:   reconcile.InvoiceReference(i.InvoiceNumber),
		BillFile:    i.FilePath,
	}
}

type Item struct {
	Description string          `json:"description" validate:"required"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice" validate:"gte=0,cents"`
}

type PurchaseOrder struct {
	ID            string          `json:"id"`
	PONumber      string          `json:"poNumber"`
	Vendor        string          `json:"vendor"`
	OrderDate     time.Time       `json:"orderDate"`
	Items         []Item          `json:"items"`
	TaxPercentage decimal.Decimal `json:"taxPercentage"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Notes         string          `json:"notes,omitempty"`
	Status        POStatus        `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
}

func (p PurchaseOrder) Source() reconcile.Source {
	return reconcile.Source{Kind: reconcile.KindPurchaseOrder, ID: p.ID}
}

func (p PurchaseOrder) CurrentStatus() string {
	return string(p.Status)
}

func (p PurchaseOrder) Debit() ledger.Entry {
	return ledger.Entry{
		Amount:      p.TotalAmount,
		Description: fmt.Sprintf("Purchase Order Paid: %s - %s", p.PONumber, p.Vendor),
		Category:    ledger.CategoryProcurement,
		Reference:   reconcile.PurchaseOrderReference(p.PONumber),
	}
}

// OrderTotal is the items subtotal plus tax, rounded to cents.
func OrderTotal(items []Item, taxPercentage decimal.Decimal) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	tax := subtotal.Mul(taxPercentage).Div(decimal.NewFromInt(100))
	return subtotal.Add(tax).Round(2)
}

type InvoiceInput struct {
	InvoiceNumber string          `json:"invoiceNumber" validate:"required,max=64"`
	Vendor        string          `json:"vendor" validate:"required,max=200"`
	InvoiceDate   time.Time       `json:"invoiceDate" validate:"required"`
	DueDate       *time.Time      `json:"dueDate"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0,cents"`
	Description   string          `json:"description" validate:"max=1000"`
	FilePath      string          `json:"filePath" validate:"max=512"`
	Status        InvoiceStatus   `json:"status" validate:"omitempty,oneof=Unpaid Overdue Cancelled"`
}

type PurchaseOrderInput struct {
	PONumber      string          `json:"poNumber" validate:"required,max=64"`
	Vendor        string          `json:"vendor" validate:"required,max=200"`
	OrderDate     time.Time       `json:"orderDate" validate:"required"`
	Items         []Item          `json:"items" validate:"required,min=1,dive"`
	TaxPercentage decimal.Decimal `json:"taxPercentage" validate:"gte=0,lte=100,cents"`
	Notes         string          `json:"notes" validate:"max=1000"`
	Status        POStatus        `json:"status" validate:"omitempty,oneof=Draft Sent Approved Completed Cancelled"`
}

type InvoiceFilter struct {
	Status InvoiceStatus
	Vendor string
	Limit  int
	Offset int
}

type PurchaseOrderFilter struct {
	Status POStatus
	Vendor string
	Limit  int
	Offset int
}
