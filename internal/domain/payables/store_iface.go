package payables

import (
	"context"

	"backoffice/internal/domain/reconcile"
)

type StoreAPI interface {
	reconcile.StoreAPI
	InTx(ctx context.Context, fn func(StoreAPI) error) error

	CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
	GetInvoice(ctx context.Context, id string) (Invoice, error)
	GetInvoiceForUpdate(ctx context.Context, id string) (Invoice, error)
	CountInvoices(ctx context.Context, filter InvoiceFilter) (int, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	CreatePurchaseOrder(ctx context.Context, po PurchaseOrder) (PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id string) (PurchaseOrder, error)
	GetPurchaseOrderForUpdate(ctx context.Context, id string) (PurchaseOrder, error)
	CountPurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) (int, error)
	ListPurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, error)
}
