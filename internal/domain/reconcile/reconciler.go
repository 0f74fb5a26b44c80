package reconcile

import (
	"context"
	"time"

	"backoffice/internal/domain/ledger"
	"backoffice/internal/platform/apperror"
	"backoffice/internal/platform/metrics"
	"backoffice/internal/platform/outbox"
)

// Reconciler applies a status change to a payable entity. Entering Paid from
// any other status writes exactly one debit; every other change only writes
// the status. The caller owns the transaction that store is scoped to.
type Reconciler struct {
	now     func() time.Time
	metrics *metrics.Collector
}

func New(collector *metrics.Collector) *Reconciler {
	return &Reconciler{now: time.Now, metrics: collector}
}

func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

func (r *Reconciler) Apply(ctx context.Context, store StoreAPI, p Payable, target string) (Result, error) {
	src := p.Source()
	current := p.CurrentStatus()

	if target != StatusPaid {
		if current == target {
			return Result{}, nil
		}
		if err := store.SetStatus(ctx, src, target); err != nil {
			return Result{}, err
		}
		return Result{Changed: true}, nil
	}

	if current == StatusPaid {
		r.metrics.PaidNoop()
		return Result{}, nil
	}

	debit := p.Debit()
	if !debit.Amount.IsPositive() {
		return Result{}, apperror.Invalid("amount", "must be greater than 0 to record a payment")
	}

	flipped, err := store.MarkPaid(ctx, src)
	if err != nil {
		return Result{}, err
	}
	if !flipped {
		// Another transaction paid it after our read.
		r.metrics.PaidNoop()
		return Result{}, nil
	}

	debit.Kind = ledger.KindDebit
	debit.SourceKind = string(src.Kind)
	debit.SourceID = src.ID
	if debit.Date.IsZero() {
		now := r.now()
		debit.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if debit.PaymentMode == "" {
		debit.PaymentMode = ledger.PaymentModeBankTransfer
	}

	entry, err := store.AppendDebit(ctx, debit)
	if err != nil {
		return Result{}, err
	}

	event, err := outbox.NewEvent(ctx, string(src.Kind), src.ID, outbox.EventDebitRecorded, DebitEvent{
		EntryID:    entry.ID,
		SourceKind: src.Kind,
		SourceID:   src.ID,
		Reference:  entry.Reference,
		Category:   entry.Category,
		Amount:     entry.Amount,
		Date:       entry.Date,
	})
	if err != nil {
		return Result{}, err
	}
	if err := store.Enqueue(ctx, event); err != nil {
		return Result{}, err
	}

	r.metrics.DebitEmitted()
	return Result{Changed: true, Debit: &entry}, nil
}
