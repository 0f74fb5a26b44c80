package memstore

import (
	"context"
	"sort"
	"time"

	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
)

type Employees struct {
	db *DB
}

func (db *DB) Employees() *Employees {
	return &Employees{db: db}
}

func (s *Employees) Create(_ context.Context, input employee.CreateInput) (employee.Employee, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check("CreateEmployee"); err != nil {
		return employee.Employee{}, err
	}
	for _, existing := range s.db.data.employees {
		if existing.EmployeeCode == input.EmployeeCode {
			return employee.Employee{}, employee.ErrDuplicateCode
		}
	}
	emp := employee.Employee{
		ID:           newID(),
		EmployeeCode: input.EmployeeCode,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Department:   input.Department,
		JoinedOn:     input.JoinedOn,
		CreatedAt:    s.db.now(),
	}
	s.db.data.employees[emp.ID] = emp
	return emp, nil
}

func (s *Employees) Get(_ context.Context, id string) (employee.Employee, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	emp, ok := s.db.data.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (s *Employees) List(_ context.Context, filter employee.Filter) ([]employee.Employee, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []employee.Employee
	for _, emp := range s.db.data.employees {
		if filter.Department != "" && emp.Department != filter.Department {
			continue
		}
		if filter.Resigned != nil && emp.IsResigned != *filter.Resigned {
			continue
		}
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

func (s *Employees) Resign(_ context.Context, id string, on time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	emp, ok := s.db.data.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	emp.IsResigned = true
	emp.ResignedOn = &on
	s.db.data.employees[id] = emp
	return nil
}

type Structures struct {
	db *DB
}

func (db *DB) Structures() *Structures {
	return &Structures{db: db}
}

func (s *Structures) Upsert(_ context.Context, in compensation.Structure) (compensation.Structure, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check("UpsertStructure"); err != nil {
		return compensation.Structure{}, err
	}
	if existing, ok := s.db.data.structures[in.EmployeeID]; ok {
		in.ID = existing.ID
	} else {
		in.ID = newID()
	}
	in.UpdatedAt = s.db.now()
	s.db.data.structures[in.EmployeeID] = in
	return in, nil
}

func (s *Structures) GetByEmployee(_ context.Context, employeeID string) (compensation.Structure, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.structure(employeeID)
}

func (db *DB) structure(employeeID string) (compensation.Structure, error) {
	out, ok := db.data.structures[employeeID]
	if !ok {
		return compensation.Structure{}, compensation.ErrStructureNotFound
	}
	return out, nil
}

func (s *Structures) List(_ context.Context) ([]compensation.Structure, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.listStructures(), nil
}

func (db *DB) listStructures() []compensation.Structure {
	out := make([]compensation.Structure, 0, len(db.data.structures))
	for _, v := range db.data.structures {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

func (s *Structures) Delete(_ context.Context, employeeID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.data.structures[employeeID]; !ok {
		return compensation.ErrStructureNotFound
	}
	delete(s.db.data.structures, employeeID)
	return nil
}
