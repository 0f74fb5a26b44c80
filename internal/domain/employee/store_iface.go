package employee

import (
	"context"
	"time"
)

type StoreAPI interface {
	Create(ctx context.Context, input CreateInput) (Employee, error)
	Get(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context, filter Filter) ([]Employee, error)
	Resign(ctx context.Context, id string, on time.Time) error
}
