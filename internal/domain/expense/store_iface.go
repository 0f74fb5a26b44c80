package expense

import (
	"context"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/reconcile"
)

// SweepStore is what a payroll payment needs to settle approved claims.
type SweepStore interface {
	reconcile.StoreAPI
	ApprovedForUpdate(ctx context.Context, employeeID string) ([]Claim, error)
}

type StoreAPI interface {
	SweepStore
	InTx(ctx context.Context, fn func(StoreAPI) error) error
	Create(ctx context.Context, claim Claim) (Claim, error)
	Get(ctx context.Context, id string) (Claim, error)
	GetForUpdate(ctx context.Context, id string) (Claim, error)
	Count(ctx context.Context, filter Filter) (int, error)
	List(ctx context.Context, filter Filter) ([]Claim, error)
	ApprovedTotal(ctx context.Context, employeeID string) (decimal.Decimal, error)
	SetReview(ctx context.Context, id, reviewer, reason string) error
}
