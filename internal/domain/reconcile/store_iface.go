package reconcile

import (
	"context"

	"backoffice/internal/domain/ledger"
	"backoffice/internal/platform/outbox"
)

// StoreAPI is the transaction-scoped persistence used by the reconciler.
type StoreAPI interface {
	SetStatus(ctx context.Context, src Source, status string) error
	// MarkPaid flips the entity to Paid unless it already is, and reports
	// whether this call performed the flip.
	MarkPaid(ctx context.Context, src Source) (bool, error)
	AppendDebit(ctx context.Context, entry ledger.Entry) (ledger.Entry, error)
	Enqueue(ctx context.Context, event outbox.Event) error
}
