package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	Insert(ctx context.Context, entry Entry) (Entry, error)
	Get(ctx context.Context, kind Kind, id string) (Entry, error)
	Count(ctx context.Context, filter Filter) (int, error)
	List(ctx context.Context, filter Filter) ([]Entry, error)
	Update(ctx context.Context, entry Entry) (Entry, error)
	Delete(ctx context.Context, kind Kind, id string) error
	// Sum totals one kind over [from, to]; a zero bound is open.
	Sum(ctx context.Context, kind Kind, from, to time.Time) (decimal.Decimal, error)
}
