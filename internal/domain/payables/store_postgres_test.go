package payables_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/ledger"
	"backoffice/internal/domain/payables"
	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/db/dbtest"
)

func newPostgresService(t *testing.T) (*pgxpool.Pool, *payables.Service) {
	t.Helper()
	pool := dbtest.Open(t)
	recorder := audit.NewService(audit.NewStore(pool), zap.NewNop(), nil, 0)
	return pool, payables.NewService(payables.NewStore(pool), reconcile.New(nil), recorder)
}

func debitsFor(t *testing.T, pool *pgxpool.Pool, reference string) []ledger.Entry {
	t.Helper()
	out, err := ledger.NewStore(pool).List(context.Background(), ledger.Filter{Kind: ledger.KindDebit})
	require.NoError(t, err)
	var matched []ledger.Entry
	for _, e := range out {
		if e.Reference == reference {
			matched = append(matched, e)
		}
	}
	return matched
}

func TestPostgresPurchaseOrderPaidTwiceWritesOneDebit(t *testing.T) {
	pool, svc := newPostgresService(t)
	ctx := context.Background()
	po, err := svc.CreatePurchaseOrder(ctx, poInput("1002"))
	require.NoError(t, err)
	assert.Equal(t, "1239.00", po.TotalAmount.StringFixed(2))

	stored, err := svc.GetPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)

	_, err = svc.SetPurchaseOrderStatus(ctx, po.ID, payables.POApproved)
	require.NoError(t, err)
	paid, err := svc.SetPurchaseOrderStatus(ctx, po.ID, payables.POPaid)
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)
	_, err = svc.SetPurchaseOrderStatus(ctx, po.ID, payables.POPaid)
	require.NoError(t, err)

	debits := debitsFor(t, pool, reconcile.PurchaseOrderReference("1002"))
	require.Len(t, debits, 1)
	assert.Equal(t, ledger.CategoryProcurement, debits[0].Category)
	assert.Equal(t, "1239.00", debits[0].Amount.StringFixed(2))

	_, err = svc.SetPurchaseOrderStatus(ctx, po.ID, payables.POCancelled)
	assert.True(t, errors.Is(err, payables.ErrPaidIsFinal))
}

func TestPostgresConcurrentInvoicePaymentsWriteOneDebit(t *testing.T) {
	pool, svc := newPostgresService(t)
	ctx := context.Background()
	inv, err := svc.CreateInvoice(ctx, invoiceInput("2026-001"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SetInvoiceStatus(ctx, inv.ID, payables.InvoicePaid)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, debitsFor(t, pool, reconcile.InvoiceReference("2026-001")), 1)

	_, err = svc.CreateInvoice(ctx, invoiceInput("2026-001"))
	assert.True(t, errors.Is(err, payables.ErrDuplicateInvoice))
}

func TestPostgresMalformedDocumentIDIsNotFound(t *testing.T) {
	_, svc := newPostgresService(t)
	ctx := context.Background()

	_, err := svc.GetInvoice(ctx, "INV-1")
	assert.True(t, errors.Is(err, payables.ErrInvoiceNotFound))
	_, err = svc.SetPurchaseOrderStatus(ctx, "PO-1", payables.POPaid)
	assert.True(t, errors.Is(err, payables.ErrPurchaseOrderNotFound))
}
