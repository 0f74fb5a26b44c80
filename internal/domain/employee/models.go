package employee

import "time"

type Employee struct {
	ID           string     `json:"id"`
	EmployeeCode string     `json:"employeeCode"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	Department   string     `json:"department"`
	JoinedOn     *time.Time `json:"joinedOn,omitempty"`
	IsResigned   bool       `json:"isResigned"`
	ResignedOn   *time.Time `json:"resignedOn,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// ResignedIn reports whether the employee resigned within the given month.
func (e Employee) ResignedIn(year int, month time.Month) bool {
	if !e.IsResigned || e.ResignedOn == nil {
		return false
	}
	return e.ResignedOn.Year() == year && e.ResignedOn.Month() == month
}

type CreateInput struct {
	EmployeeCode string     `json:"employeeCode" validate:"required,max=64"`
	FirstName    string     `json:"firstName" validate:"required,max=128"`
	LastName     string     `json:"lastName" validate:"max=128"`
	Email        string     `json:"email" validate:"omitempty,email"`
	Department   string     `json:"department" validate:"max=128"`
	JoinedOn     *time.Time `json:"joinedOn"`
}

type Filter struct {
	Department string
	Resigned   *bool
}
