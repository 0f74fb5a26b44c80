package compensation

import (
	"context"

	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/employee"
	"backoffice/internal/platform/apperror"
)

// EmployeeLookup is the slice of the employee store the service needs.
type EmployeeLookup interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
}

type Service struct {
	store     StoreAPI
	employees EmployeeLookup
	audit     audit.Recorder
}

func NewService(store StoreAPI, employees EmployeeLookup, recorder audit.Recorder) *Service {
	return &Service{store: store, employees: employees, audit: recorder}
}

// Upsert creates the employee's structure or replaces the existing one.
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (Structure, error) {
	if err := apperror.Struct(input); err != nil {
		return Structure{}, err
	}
	emp, err := s.employees.Get(ctx, input.EmployeeID)
	if err != nil {
		return Structure{}, apperror.Persistence(err)
	}
	out, err := s.store.Upsert(ctx, input.Structure())
	if err != nil {
		return Structure{}, apperror.Persistence(err)
	}
	s.audit.Record(ctx, audit.ActionUpdate, audit.ResourceSalaryStructure, out.ID,
		"Salary structure saved for "+emp.FullName())
	return out, nil
}

func (s *Service) Get(ctx context.Context, employeeID string) (Structure, error) {
	out, err := s.store.GetByEmployee(ctx, employeeID)
	if err != nil {
		return Structure{}, apperror.Persistence(err)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context) ([]Structure, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, employeeID string) error {
	if err := s.store.Delete(ctx, employeeID); err != nil {
		return apperror.Persistence(err)
	}
	s.audit.Record(ctx, audit.ActionDelete, audit.ResourceSalaryStructure, employeeID, "Salary structure deleted")
	return nil
}
