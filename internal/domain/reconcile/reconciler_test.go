package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain/ledger"
	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/apperror"
	"backoffice/internal/platform/metrics"
	"backoffice/internal/platform/outbox"
)

type fakeStore struct {
	statuses map[string]string
	debits   []ledger.Entry
	events   []outbox.Event
	// lostRace makes MarkPaid report that another writer already flipped the row.
	lostRace  bool
	appendErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{statuses: map[string]string{}}
}

func (f *fakeStore) SetStatus(_ context.Context, src reconcile.Source, status string) error {
	f.statuses[src.ID] = status
	return nil
}

func (f *fakeStore) MarkPaid(_ context.Context, src reconcile.Source) (bool, error) {
	if f.lostRace || f.statuses[src.ID] == reconcile.StatusPaid {
		return false, nil
	}
	f.statuses[src.ID] = reconcile.StatusPaid
	return true, nil
}

func (f *fakeStore) AppendDebit(_ context.Context, entry ledger.Entry) (ledger.Entry, error) {
	if f.appendErr != nil {
		return ledger.Entry{}, f.appendErr
	}
	entry.ID = "debit-1"
	f.debits = append(f.debits, entry)
	return entry, nil
}

func (f *fakeStore) Enqueue(_ context.Context, event outbox.Event) error {
	f.events = append(f.events, event)
	return nil
}

type invoiceStub struct {
	id     string
	status string
	amount decimal.Decimal
}

func (i invoiceStub) Source() reconcile.Source {
	return reconcile.Source{Kind: reconcile.KindInvoice, ID: i.id}
}

func (i invoiceStub) CurrentStatus() string {
	return i.status
}

func (i invoiceStub) Debit() ledger.Entry {
	return ledger.Entry{
		Amount:    i.amount,
		Category:  ledger.CategoryVendorPayment,
		Reference: reconcile.InvoiceReference("INV-42"),
	}
}

var fixedNow = time.Date(2026, time.October, 16, 14, 5, 0, 0, time.UTC)

func newReconciler(collector *metrics.Collector) *reconcile.Reconciler {
	return reconcile.New(collector).WithClock(func() time.Time { return fixedNow })
}

func TestApplyNonPaidTargetOnlyWritesStatus(t *testing.T) {
	store := newFakeStore()
	res, err := newReconciler(nil).Apply(context.Background(), store, invoiceStub{id: "1", status: "Unpaid", amount: decimal.NewFromInt(10)}, "Overdue")
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Nil(t, res.Debit)
	assert.Equal(t, "Overdue", store.statuses["1"])
	assert.Empty(t, store.debits)
}

func TestApplySameNonPaidStatusIsNoop(t *testing.T) {
	store := newFakeStore()
	res, err := newReconciler(nil).Apply(context.Background(), store, invoiceStub{id: "1", status: "Unpaid", amount: decimal.NewFromInt(10)}, "Unpaid")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, store.statuses)
}

func TestApplyPaidWritesOneDebitWithDefaults(t *testing.T) {
	store := newFakeStore()
	collector := metrics.New()

	res, err := newReconciler(collector).Apply(context.Background(), store, invoiceStub{id: "7", status: "Unpaid", amount: decimal.RequireFromString("1250.40")}, reconcile.StatusPaid)
	require.NoError(t, err)
	require.NotNil(t, res.Debit)

	require.Len(t, store.debits, 1)
	debit := store.debits[0]
	assert.Equal(t, ledger.KindDebit, debit.Kind)
	assert.Equal(t, "invoice", debit.SourceKind)
	assert.Equal(t, "7", debit.SourceID)
	assert.Equal(t, ledger.PaymentModeBankTransfer, debit.PaymentMode)
	assert.Equal(t, "2026-10-16", debit.Date.Format("2006-01-02"))
	assert.Equal(t, "INV-INV-42", debit.Reference)

	require.Len(t, store.events, 1)
	assert.Equal(t, outbox.EventDebitRecorded, store.events[0].EventType)
	assert.Equal(t, "7", store.events[0].AggregateID)
	assert.Contains(t, string(store.events[0].Payload), `"reference":"INV-INV-42"`)
	assert.Equal(t, uint64(1), collector.Snapshot()["debitsEmittedTotal"])
}

func TestApplyPaidWhenAlreadyPaidIsNoop(t *testing.T) {
	store := newFakeStore()
	collector := metrics.New()

	res, err := newReconciler(collector).Apply(context.Background(), store, invoiceStub{id: "7", status: reconcile.StatusPaid, amount: decimal.NewFromInt(5)}, reconcile.StatusPaid)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, store.debits)
	assert.Equal(t, uint64(1), collector.Snapshot()["paidNoopsTotal"])
}

func TestApplyLostRaceWritesNothing(t *testing.T) {
	store := newFakeStore()
	store.lostRace = true

	res, err := newReconciler(nil).Apply(context.Background(), store, invoiceStub{id: "7", status: "Unpaid", amount: decimal.NewFromInt(5)}, reconcile.StatusPaid)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, store.debits)
	assert.Empty(t, store.events)
}

func TestApplyRejectsNonPositiveAmount(t *testing.T) {
	store := newFakeStore()

	_, err := newReconciler(nil).Apply(context.Background(), store, invoiceStub{id: "7", status: "Unpaid", amount: decimal.Zero}, reconcile.StatusPaid)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, store.statuses)
}

func TestApplyPropagatesDebitFailure(t *testing.T) {
	store := newFakeStore()
	store.appendErr = errors.New("insert failed")

	_, err := newReconciler(nil).Apply(context.Background(), store, invoiceStub{id: "7", status: "Unpaid", amount: decimal.NewFromInt(5)}, reconcile.StatusPaid)
	require.ErrorIs(t, err, store.appendErr)
	assert.Empty(t, store.events)
}

func TestReferencesAreDeterministic(t *testing.T) {
	end := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "SAL-emp-1-032026", reconcile.SalaryReference("emp-1", end))
	assert.Equal(t, reconcile.SalaryReference("emp-1", end), reconcile.SalaryReference("emp-1", end.AddDate(0, 0, -3)))
	assert.Equal(t, "EXP-abc", reconcile.ExpenseClaimReference("abc"))
	assert.Equal(t, "INV-2026-001", reconcile.InvoiceReference("2026-001"))
	assert.Equal(t, "PO-77", reconcile.PurchaseOrderReference("77"))
}
