package payables

import (
	"context"
	"fmt"

	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/apperror"
)

type Service struct {
	store      StoreAPI
	reconciler *reconcile.Reconciler
	audit      audit.Recorder
}

func NewService(store StoreAPI, reconciler *reconcile.Reconciler, recorder audit.Recorder) *Service {
	return &Service{store: store, reconciler: reconciler, audit: recorder}
}

// CreateInvoice records a vendor invoice. New invoices cannot start as Paid;
// payment goes through SetInvoiceStatus so the debit is written.
func (s *Service) CreateInvoice(ctx context.Context, input InvoiceInput) (Invoice, error) {
	if err := apperror.Struct(input); err != nil {
		return Invoice{}, err
	}
	if input.DueDate != nil && input.DueDate.Before(input.InvoiceDate) {
		return Invoice{}, apperror.Invalid("dueDate", "must not be before invoiceDate")
	}
	status := input.Status
	if status == "" {
		status = InvoiceUnpaid
	}
	inv, err := s.store.CreateInvoice(ctx, Invoice{
		InvoiceNumber: input.InvoiceNumber,
		Vendor:        input.Vendor,
		InvoiceDate:   input.InvoiceDate,
		DueDate:       input.DueDate,
		Amount:        input.Amount,
		Description:   input.Description,
		FilePath:      input.FilePath,
		Status:        status,
	})
	if err != nil {
		return Invoice{}, apperror.Persistence(err)
	}
	s.audit.Record(ctx, audit.ActionCreate, audit.ResourceInvoice, inv.ID,
		fmt.Sprintf("Invoice %s from %s for %s", inv.InvoiceNumber, inv.Vendor, inv.Amount.StringFixed(2)))
	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, id string) (Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return Invoice{}, apperror.Persistence(err)
	}
	return inv, nil
}

func (s *Service) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperror.Invalid("status", "must be one of: Unpaid Overdue Cancelled Paid")
	}
	total, err := s.store.CountInvoices(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	out, err := s.store.ListInvoices(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	return out, total, nil
}

func (s *Service) SetInvoiceStatus(ctx context.Context, id string, status InvoiceStatus) (Invoice, error) {
	if !status.Valid() {
		return Invoice{}, apperror.Invalid("status", "must be one of: Unpaid Overdue Cancelled Paid")
	}
	var (
		inv    Invoice
		result reconcile.Result
	)
	err := s.store.InTx(ctx, func(tx StoreAPI) error {
		current, err := tx.GetInvoiceForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == InvoicePaid && status != InvoicePaid {
			return ErrPaidIsFinal
		}
		result, err = s.reconciler.Apply(ctx, tx, current, string(status))
		if err != nil {
			return err
		}
		inv, err = tx.GetInvoice(ctx, id)
		return err
	})
	if err != nil {
		return Invoice{}, apperror.Persistence(err)
	}
	if result.Changed {
		s.audit.Record(ctx, audit.ActionUpdate, audit.ResourceInvoice, id, statusDetail("Invoice "+inv.InvoiceNumber, string(status), result))
	}
	return inv, nil
}

// CreatePurchaseOrder computes the order total from its items and tax.
func (s *Service) CreatePurchaseOrder(ctx context.Context, input PurchaseOrderInput) (PurchaseOrder, error) {
	if err := apperror.Struct(input); err != nil {
		return PurchaseOrder{}, err
	}
	total := OrderTotal(input.Items, input.TaxPercentage)
	if !total.IsPositive() {
		return PurchaseOrder{}, apperror.Invalid("items", "order total must be greater than 0")
	}
	status := input.Status
	if status == "" {
		status = PODraft
	}
	po, err := s.store.CreatePurchaseOrder(ctx, PurchaseOrder{
		PONumber:      input.PONumber,
		Vendor:        input.Vendor,
		OrderDate:     input.OrderDate,
		Items:         input.Items,
		TaxPercentage: input.TaxPercentage,
		TotalAmount:   total,
		Notes:         input.Notes,
		Status:        status,
	})
	if err != nil {
		return PurchaseOrder{}, apperror.Persistence(err)
	}
	s.audit.Record(ctx, audit.ActionCreate, audit.ResourcePurchaseOrder, po.ID,
		fmt.Sprintf("Purchase order %s to %s for %s", po.PONumber, po.Vendor, po.TotalAmount.StringFixed(2)))
	return po, nil
}

func (s *Service) GetPurchaseOrder(ctx context.Context, id string) (PurchaseOrder, error) {
	po, err := s.store.GetPurchaseOrder(ctx, id)
	if err != nil {
		return PurchaseOrder{}, apperror.Persistence(err)
	}
	return po, nil
}

func (s *Service) ListPurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperror.Invalid("status", "must be one of: Draft Sent Approved Completed Cancelled Paid")
	}
	total, err := s.store.CountPurchaseOrders(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	out, err := s.store.ListPurchaseOrders(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	return out, total, nil
}

func (s *Service) SetPurchaseOrderStatus(ctx context.Context, id string, status POStatus) (PurchaseOrder, error) {
	if !status.Valid() {
		return PurchaseOrder{}, apperror.Invalid("status", "must be one of: Draft Sent Approved Completed Cancelled Paid")
	}
	var (
		po     PurchaseOrder
		result reconcile.Result
	)
	err := s.store.InTx(ctx, func(tx StoreAPI) error {
		current, err := tx.GetPurchaseOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == POPaid && status != POPaid {
			return ErrPaidIsFinal
		}
		result, err = s.reconciler.Apply(ctx, tx, current, string(status))
		if err != nil {
			return err
		}
		po, err = tx.GetPurchaseOrder(ctx, id)
		return err
	})
	if err != nil {
		return PurchaseOrder{}, apperror.Persistence(err)
	}
	if result.Changed {
		s.audit.Record(ctx, audit.ActionUpdate, audit.ResourcePurchaseOrder, id, statusDetail("Purchase order "+po.PONumber, string(status), result))
	}
	return po, nil
}

func statusDetail(subject, status string, result reconcile.Result) string {
	detail := fmt.Sprintf("%s set to %s", subject, status)
	if result.Debit != nil {
		detail += " (debit " + result.Debit.Reference + ")"
	}
	return detail
}
