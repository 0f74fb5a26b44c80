package compensation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
	"backoffice/internal/domain/memstore"
	"backoffice/internal/platform/apperror"
)

func newService() (*memstore.DB, *compensation.Service, employee.Employee) {
	db := memstore.New()
	emp := db.SeedEmployee(employee.Employee{EmployeeCode: "E-9", FirstName: "Noor", LastName: "Haddad"})
	recorder := audit.NewService(db.Audit(), zap.NewNop(), nil, 0)
	return db, compensation.NewService(db.Structures(), db.Employees(), recorder), emp
}

func structureFor(employeeID string) compensation.UpsertInput {
	return compensation.UpsertInput{
		EmployeeID:       employeeID,
		MonthlyCTC:       decimal.NewFromInt(52000),
		Basic:            decimal.NewFromInt(30000),
		HRA:              decimal.NewFromInt(12000),
		Conveyance:       decimal.NewFromInt(1600),
		Medical:          decimal.NewFromInt(1250),
		SpecialAllowance: decimal.NewFromInt(5150),
		PF:               decimal.NewFromInt(1800),
		ProfessionalTax:  decimal.NewFromInt(200),
	}
}

func TestUpsertReplacesExistingStructure(t *testing.T) {
	db, svc, emp := newService()
	ctx := context.Background()

	first, err := svc.Upsert(ctx, structureFor(emp.ID))
	require.NoError(t, err)

	next := structureFor(emp.ID)
	next.Basic = decimal.NewFromInt(32000)
	second, err := svc.Upsert(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := svc.Get(ctx, emp.ID)
	require.NoError(t, err)
	assert.True(t, got.Basic.Equal(decimal.NewFromInt(32000)))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Contains(t, db.AuditEntries()[0].Details, "Noor Haddad")
}

func TestUpsertRejectsSubCentComponent(t *testing.T) {
	db, svc, emp := newService()

	bad := structureFor(emp.ID)
	bad.Conveyance = decimal.RequireFromString("1600.005")
	_, err := svc.Upsert(context.Background(), bad)
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, db.AuditEntries())
}

func TestUpsertRejectsNegativeAndUnknownEmployee(t *testing.T) {
	_, svc, emp := newService()
	ctx := context.Background()

	bad := structureFor(emp.ID)
	bad.HRA = decimal.NewFromInt(-1)
	_, err := svc.Upsert(ctx, bad)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Upsert(ctx, structureFor("missing"))
	assert.True(t, errors.Is(err, employee.ErrEmployeeNotFound))
}

func TestDeleteStructure(t *testing.T) {
	_, svc, emp := newService()
	ctx := context.Background()
	_, err := svc.Upsert(ctx, structureFor(emp.ID))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, emp.ID))
	_, err = svc.Get(ctx, emp.ID)
	assert.True(t, errors.Is(err, compensation.ErrStructureNotFound))
	assert.True(t, errors.Is(svc.Delete(ctx, emp.ID), compensation.ErrStructureNotFound))
}
