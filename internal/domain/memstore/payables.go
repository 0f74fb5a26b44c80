package memstore

import (
	"context"
	"sort"

	"backoffice/internal/domain/payables"
)

type Payables struct {
	reconcileOps
	tx bool
}

func (db *DB) Payables() *Payables {
	return &Payables{reconcileOps: reconcileOps{db: db}}
}

func (s *Payables) InTx(_ context.Context, fn func(payables.StoreAPI) error) error {
	if s.tx {
		return fn(s)
	}
	return s.db.inTx(func() error {
		return fn(&Payables{reconcileOps: s.reconcileOps, tx: true})
	})
}

func (s *Payables) CreateInvoice(_ context.Context, inv payables.Invoice) (payables.Invoice, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.data.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return payables.Invoice{}, payables.ErrDuplicateInvoice
		}
	}
	inv.ID = newID()
	inv.CreatedAt = s.db.now()
	s.db.data.invoices[inv.ID] = inv
	return inv, nil
}

func (s *Payables) GetInvoice(_ context.Context, id string) (payables.Invoice, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	inv, ok := s.db.data.invoices[id]
	if !ok {
		return payables.Invoice{}, payables.ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *Payables) GetInvoiceForUpdate(ctx context.Context, id string) (payables.Invoice, error) {
	return s.GetInvoice(ctx, id)
}

func (s *Payables) CountInvoices(ctx context.Context, filter payables.InvoiceFilter) (int, error) {
	filter.Limit, filter.Offset = 0, 0
	out, err := s.ListInvoices(ctx, filter)
	return len(out), err
}

func (s *Payables) ListInvoices(_ context.Context, filter payables.InvoiceFilter) ([]payables.Invoice, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []payables.Invoice
	for _, inv := range s.db.data.invoices {
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.Vendor != "" && !containsFold(inv.Vendor, filter.Vendor) {
			continue
		}
		out = append(out, inv)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].InvoiceDate.After(out[j].InvoiceDate) })
	return page(out, filter.Limit, filter.Offset), nil
}

func (s *Payables) CreatePurchaseOrder(_ context.Context, po payables.PurchaseOrder) (payables.PurchaseOrder, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.data.orders {
		if existing.PONumber == po.PONumber {
			return payables.PurchaseOrder{}, payables.ErrDuplicatePurchaseOrder
		}
	}
	po.ID = newID()
	po.CreatedAt = s.db.now()
	s.db.data.orders[po.ID] = po
	return po, nil
}

func (s *Payables) GetPurchaseOrder(_ context.Context, id string) (payables.PurchaseOrder, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	po, ok := s.db.data.orders[id]
	if !ok {
		return payables.PurchaseOrder{}, payables.ErrPurchaseOrderNotFound
	}
	return po, nil
}

func (s *Payables) GetPurchaseOrderForUpdate(ctx context.Context, id string) (payables.PurchaseOrder, error) {
	return s.GetPurchaseOrder(ctx, id)
}

func (s *Payables) CountPurchaseOrders(ctx context.Context, filter payables.PurchaseOrderFilter) (int, error) {
	filter.Limit, filter.Offset = 0, 0
	out, err := s.ListPurchaseOrders(ctx, filter)
	return len(out), err
}

func (s *Payables) ListPurchaseOrders(_ context.Context, filter payables.PurchaseOrderFilter) ([]payables.PurchaseOrder, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []payables.PurchaseOrder
	for _, po := range s.db.data.orders {
		if filter.Status != "" && po.Status != filter.Status {
			continue
		}
		if filter.Vendor != "" && !containsFold(po.Vendor, filter.Vendor) {
			continue
		}
		out = append(out, po)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return page(out, filter.Limit, filter.Offset), nil
}
