package payables_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/ledger"
	"backoffice/internal/domain/memstore"
	"backoffice/internal/domain/payables"
	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/apperror"
)

func newService(t *testing.T) (*memstore.DB, *payables.Service) {
	t.Helper()
	db := memstore.New()
	recorder := audit.NewService(db.Audit(), zap.NewNop(), nil, 0)
	return db, payables.NewService(db.Payables(), reconcile.New(nil), recorder)
}

func invoiceInput(number string) payables.InvoiceInput {
	return payables.InvoiceInput{
		InvoiceNumber: number,
		Vendor:        "Acme Supplies",
		InvoiceDate:   time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.RequireFromString("1180.00"),
	}
}

func poInput(number string) payables.PurchaseOrderInput {
	return payables.PurchaseOrderInput{
		PONumber:  number,
		Vendor:    "Desk World",
		OrderDate: time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC),
		Items: []payables.Item{
			{Description: "Standing desk", Quantity: 2, UnitPrice: decimal.RequireFromString("450")},
			{Description: "Monitor arm", Quantity: 4, UnitPrice: decimal.RequireFromString("37.50")},
		},
		TaxPercentage: decimal.RequireFromString("18"),
	}
}

func TestInvoicePaidOnce(t *testing.T) {
	db, svc := newService(t)
	ctx := context.Background()
	inv, err := svc.CreateInvoice(ctx, invoiceInput("2026-001"))
	require.NoError(t, err)
	assert.Equal(t, payables.InvoiceUnpaid, inv.Status)

	paid, err := svc.SetInvoiceStatus(ctx, inv.ID, payables.InvoicePaid)
	require.NoError(t, err)
	assert.Equal(t, payables.InvoicePaid, paid.Status)
	_, err = svc.SetInvoiceStatus(ctx, inv.ID, payables.InvoicePaid)
	require.NoError(t, err)

	debits := db.EntriesByReference("INV-2026-001")
	require.Len(t, debits, 1)
	assert.Equal(t, ledger.CategoryVendorPayment, debits[0].Category)
	assert.Equal(t, "Invoice Payment: 2026-001 - Acme Supplies", debits[0].Description)
	assert.Equal(t, "1180.00", debits[0].Amount.StringFixed(2))
}

func TestInvoiceNonPaidStatusesWriteNoDebit(t *testing.T) {
	db, svc := newService(t)
	ctx := context.Background()
	inv, err := svc.CreateInvoice(ctx, invoiceInput("2026-002"))
	require.NoError(t, err)

	out, err := svc.SetInvoiceStatus(ctx, inv.ID, payables.InvoiceOverdue)
	require.NoError(t, err)
	assert.Equal(t, payables.InvoiceOverdue, out.Status)
	assert.Empty(t, db.Entries())
}

func TestPaidInvoiceIsFinal(t *testing.T) {
	_, svc := newService(t)
	ctx := context.Background()
	inv, err := svc.CreateInvoice(ctx, invoiceInput("2026-003"))
	require.NoError(t, err)
	_, err = svc.SetInvoiceStatus(ctx, inv.ID, payables.InvoicePaid)
	require.NoError(t, err)

	_, err = svc.SetInvoiceStatus(ctx, inv.ID, payables.InvoiceCancelled)
	assert.True(t, errors.Is(err, payables.ErrPaidIsFinal))
}

func TestCreateInvoiceRejectsDuplicatesAndPaidStatus(t *testing.T) {
	_, svc := newService(t)
	ctx := context.Background()
	_, err := svc.CreateInvoice(ctx, invoiceInput("2026-004"))
	require.NoError(t, err)

	_, err = svc.CreateInvoice(ctx, invoiceInput("2026-004"))
	assert.True(t, errors.Is(err, payables.ErrDuplicateInvoice))

	input := invoiceInput("2026-005")
	input.Status = payables.InvoicePaid
	_, err = svc.CreateInvoice(ctx, input)
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateRejectsSubCentAmounts(t *testing.T) {
	db, svc := newService(t)
	ctx := context.Background()

	invoice := invoiceInput("2026-006")
	invoice.Amount = decimal.RequireFromString("0.001")
	_, err := svc.CreateInvoice(ctx, invoice)
	assert.True(t, apperror.IsValidation(err))

	po := poInput("PO-1002")
	po.Items[1].UnitPrice = decimal.RequireFromString("37.505")
	_, err = svc.CreatePurchaseOrder(ctx, po)
	assert.True(t, apperror.IsValidation(err))

	po = poInput("PO-1003")
	po.TaxPercentage = decimal.RequireFromString("18.125")
	_, err = svc.CreatePurchaseOrder(ctx, po)
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, db.Entries())
}

func TestPurchaseOrderTotalIncludesTax(t *testing.T) {
	_, svc := newService(t)
	po, err := svc.CreatePurchaseOrder(context.Background(), poInput("PO-1001"))
	require.NoError(t, err)

	// (2*450 + 4*37.50) * 1.18
	assert.Equal(t, "1239.00", po.TotalAmount.StringFixed(2))
	assert.Equal(t, payables.PODraft, po.Status)
}

func TestPurchaseOrderAlreadyPaidLeavesLedgerUnchanged(t *testing.T) {
	db, svc := newService(t)
	ctx := context.Background()
	po, err := svc.CreatePurchaseOrder(ctx, poInput("1002"))
	require.NoError(t, err)
	_, err = svc.SetPurchaseOrderStatus(ctx, po.ID, payables.POApproved)
	require.NoError(t, err)
	_, err = svc.SetPurchaseOrderStatus(ctx, po.ID, payables.POPaid)
	require.NoError(t, err)
	count := len(db.Entries())
	require.Equal(t, 1, count)
	assert.Equal(t, "PO-1002", db.Entries()[0].Reference)
	assert.Equal(t, ledger.CategoryProcurement, db.Entries()[0].Category)

	_, err = svc.SetPurchaseOrderStatus(ctx, po.ID, payables.POPaid)
	require.NoError(t, err)
	assert.Len(t, db.Entries(), count)
}

func TestPurchaseOrderPaymentRollsBackOnFailure(t *testing.T) {
	db, svc := newService(t)
	ctx := context.Background()
	po, err := svc.CreatePurchaseOrder(ctx, poInput("1003"))
	require.NoError(t, err)

	db.FailOn("AppendDebit", errors.New("ledger unavailable"))
	_, err = svc.SetPurchaseOrderStatus(ctx, po.ID, payables.POPaid)
	require.Error(t, err)

	current, err := svc.GetPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, payables.PODraft, current.Status)
	assert.Nil(t, current.PaidAt)
}

func TestListInvoicesFiltersByVendor(t *testing.T) {
	_, svc := newService(t)
	ctx := context.Background()
	_, err := svc.CreateInvoice(ctx, invoiceInput("A-1"))
	require.NoError(t, err)
	other := invoiceInput("B-1")
	other.Vendor = "Blue Logistics"
	_, err = svc.CreateInvoice(ctx, other)
	require.NoError(t, err)

	out, total, err := svc.ListInvoices(ctx, payables.InvoiceFilter{Vendor: "blue"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "B-1", out[0].InvoiceNumber)
}
