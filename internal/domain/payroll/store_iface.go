package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
	"backoffice/internal/domain/expense"
)

type StoreAPI interface {
	expense.SweepStore
	InTx(ctx context.Context, fn func(StoreAPI) error) error

	Create(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	GetForUpdate(ctx context.Context, id string) (Record, error)
	Exists(ctx context.Context, employeeID string, periodEnd time.Time) (bool, error)
	Count(ctx context.Context, filter Filter) (int, error)
	List(ctx context.Context, filter Filter) ([]Record, error)
	// ListForUpdate locks the records whose period ends in the month and whose
	// status differs from exclude.
	ListForUpdate(ctx context.Context, year int, month time.Month, exclude Status) ([]Record, error)
	Update(ctx context.Context, rec Record) (Record, error)

	Employee(ctx context.Context, id string) (employee.Employee, error)
	Structure(ctx context.Context, employeeID string) (compensation.Structure, error)
	Structures(ctx context.Context) ([]compensation.Structure, error)
	ApprovedTotal(ctx context.Context, employeeID string) (decimal.Decimal, error)
}
