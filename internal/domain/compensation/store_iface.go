package compensation

import "context"

type StoreAPI interface {
	Upsert(ctx context.Context, s Structure) (Structure, error)
	GetByEmployee(ctx context.Context, employeeID string) (Structure, error)
	List(ctx context.Context) ([]Structure, error)
	Delete(ctx context.Context, employeeID string) error
}
