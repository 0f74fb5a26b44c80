package expense

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/employee"
	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/apperror"
	"backoffice/internal/requestctx"
)

type EmployeeLookup interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
}

type Service struct {
	store      StoreAPI
	employees  EmployeeLookup
	reconciler *reconcile.Reconciler
	audit      audit.Recorder
}

func NewService(store StoreAPI, employees EmployeeLookup, reconciler *reconcile.Reconciler, recorder audit.Recorder) *Service {
	return &Service{store: store, employees: employees, reconciler: reconciler, audit: recorder}
}

// Submit files a new claim in Pending.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (Claim, error) {
	if err := apperror.Struct(input); err != nil {
		return Claim{}, err
	}
	if _, err := s.employees.Get(ctx, input.EmployeeID); err != nil {
		return Claim{}, apperror.Persistence(err)
	}
	claim, err := s.store.Create(ctx, Claim{
		EmployeeID:   input.EmployeeID,
		Title:        input.Title,
		Category:     input.Category,
		Description:  input.Description,
		Amount:       input.Amount,
		DateOccurred: input.DateOccurred,
		Status:       StatusPending,
	})
	if err != nil {
		return Claim{}, apperror.Persistence(err)
	}
	s.audit.Record(ctx, audit.ActionCreate, audit.ResourceExpenseClaim, claim.ID,
		fmt.Sprintf("Expense claim %q submitted for %s", claim.Title, claim.Amount.StringFixed(2)))
	return claim, nil
}

func (s *Service) Get(ctx context.Context, id string) (Claim, error) {
	claim, err := s.store.Get(ctx, id)
	if err != nil {
		return Claim{}, apperror.Persistence(err)
	}
	return claim, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Claim, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperror.Invalid("status", "must be one of: Pending Approved Rejected Paid")
	}
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	claims, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Persistence(err)
	}
	return claims, total, nil
}

// ApprovedTotal is the reimbursement amount a payroll prefill would show.
func (s *Service) ApprovedTotal(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	total, err := s.store.ApprovedTotal(ctx, employeeID)
	if err != nil {
		return decimal.Zero, apperror.Persistence(err)
	}
	return total, nil
}

// SetStatus moves a claim along the transition table. Approving or rejecting
// records the acting reviewer; paying goes through the reconciler so exactly
// one debit is written.
func (s *Service) SetStatus(ctx context.Context, id string, status Status, reason string) (Claim, error) {
	if !status.Valid() {
		return Claim{}, apperror.Invalid("status", "must be one of: Pending Approved Rejected Paid")
	}
	if status == StatusRejected && reason == "" {
		return Claim{}, apperror.Invalid("rejectionReason", "is required when rejecting a claim")
	}

	var (
		claim  Claim
		result reconcile.Result
	)
	err := s.store.InTx(ctx, func(tx StoreAPI) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(current.Status, status) {
			return fmt.Errorf("%s -> %s: %w", current.Status, status, ErrInconsistentTransition)
		}
		if current.Status != status && (status == StatusApproved || status == StatusRejected) {
			if err := tx.SetReview(ctx, id, requestctx.ActorName(ctx), reason); err != nil {
				return err
			}
		}
		result, err = s.reconciler.Apply(ctx, tx, current, string(status))
		if err != nil {
			return err
		}
		claim, err = tx.Get(ctx, id)
		return err
	})
	if err != nil {
		return Claim{}, apperror.Persistence(err)
	}

	if result.Changed {
		detail := fmt.Sprintf("Expense claim %q set to %s", claim.Title, status)
		if result.Debit != nil {
			detail += " (debit " + result.Debit.Reference + ")"
		}
		s.audit.Record(ctx, audit.ActionUpdate, audit.ResourceExpenseClaim, id, detail)
	}
	return claim, nil
}
