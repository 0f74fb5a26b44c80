package employee

import (
	"context"
	"time"

	"backoffice/internal/domain/audit"
	"backoffice/internal/platform/apperror"
)

type Service struct {
	store StoreAPI
	audit audit.Recorder
}

func NewService(store StoreAPI, recorder audit.Recorder) *Service {
	return &Service{store: store, audit: recorder}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Employee, error) {
	if err := apperror.Struct(input); err != nil {
		return Employee{}, err
	}
	emp, err := s.store.Create(ctx, input)
	if err != nil {
		return Employee{}, apperror.Persistence(err)
	}
	s.audit.Record(ctx, audit.ActionCreate, audit.ResourceEmployee, emp.ID, "Created employee "+emp.EmployeeCode)
	return emp, nil
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	emp, err := s.store.Get(ctx, id)
	if err != nil {
		return Employee{}, apperror.Persistence(err)
	}
	return emp, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Employee, error) {
	out, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return out, nil
}

// Resign marks the employee as resigned on the given date. Pro-ration for the
// month of resignation reads this date.
func (s *Service) Resign(ctx context.Context, id string, on time.Time) (Employee, error) {
	if on.IsZero() {
		return Employee{}, apperror.Invalid("resignedOn", "is required")
	}
	emp, err := s.store.Get(ctx, id)
	if err != nil {
		return Employee{}, apperror.Persistence(err)
	}
	if emp.IsResigned {
		return Employee{}, ErrAlreadyResigned
	}
	if err := s.store.Resign(ctx, id, on); err != nil {
		return Employee{}, apperror.Persistence(err)
	}
	emp.IsResigned = true
	emp.ResignedOn = &on
	s.audit.Record(ctx, audit.ActionUpdate, audit.ResourceEmployee, id, "Resigned on "+on.Format("2006-01-02"))
	return emp, nil
}
