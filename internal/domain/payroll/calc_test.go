package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestComputeTotals(t *testing.T) {
	earnings := Earnings{Basic: d("20000"), HRA: d("8000"), Bonus: d("1500.50"), Reimbursements: d("499.50")}
	deductions := Deductions{PF: d("1800"), ProfessionalTax: d("200"), TDS: d("1000")}

	gross, total, net := ComputeTotals(earnings, deductions)
	if gross.StringFixed(2) != "30000.00" {
		t.Fatalf("expected gross 30000.00, got %s", gross.StringFixed(2))
	}
	if total.StringFixed(2) != "3000.00" {
		t.Fatalf("expected deductions 3000.00, got %s", total.StringFixed(2))
	}
	if net.StringFixed(2) != "27000.00" {
		t.Fatalf("expected net 27000.00, got %s", net.StringFixed(2))
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2026, time.February, 28},
		{2026, time.September, 30},
		{2026, time.December, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Fatalf("%d-%02d: expected %d days, got %d", tc.year, tc.month, tc.want, got)
		}
	}
}

func TestPeriodBoundsDecember(t *testing.T) {
	start, end := PeriodBounds(2026, time.December)
	if start.Format("2006-01-02") != "2026-12-01" {
		t.Fatalf("unexpected start %s", start)
	}
	if end.Format("2006-01-02") != "2026-12-31" {
		t.Fatalf("unexpected end %s", end)
	}
}

func TestWorkedDaysOnlyCountsResignationInSameMonth(t *testing.T) {
	resigned := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)
	emp := employee.Employee{IsResigned: true, ResignedOn: &resigned}

	if got := WorkedDays(emp, 2026, time.September); got != 10 {
		t.Fatalf("expected 10 worked days, got %d", got)
	}
	if got := WorkedDays(emp, 2026, time.August); got != 31 {
		t.Fatalf("expected full August, got %d", got)
	}
	if got := WorkedDays(employee.Employee{}, 2026, time.September); got != 30 {
		t.Fatalf("expected full month for active employee, got %d", got)
	}
}

func TestProrateRoundsEachComponent(t *testing.T) {
	structure := compensation.Structure{
		Basic:            d("30000"),
		HRA:              d("12000"),
		Conveyance:       d("1600"),
		Medical:          d("1250"),
		SpecialAllowance: d("5150"),
		PF:               d("1800"),
		ESI:              d("0"),
		ProfessionalTax:  d("200"),
	}

	earnings, deductions := Prorate(structure, 10, 30)

	want := map[string]decimal.Decimal{
		"basic":            earnings.Basic,
		"hra":              earnings.HRA,
		"conveyance":       earnings.Conveyance,
		"medical":          earnings.Medical,
		"specialAllowance": earnings.SpecialAllowance,
		"pf":               deductions.PF,
		"professionalTax":  deductions.ProfessionalTax,
	}
	expected := map[string]string{
		"basic":            "10000.00",
		"hra":              "4000.00",
		"conveyance":       "533.33",
		"medical":          "416.67",
		"specialAllowance": "1716.67",
		"pf":               "600.00",
		"professionalTax":  "200.00",
	}
	for field, got := range want {
		if got.StringFixed(2) != expected[field] {
			t.Fatalf("%s: expected %s, got %s", field, expected[field], got.StringFixed(2))
		}
	}
}

func TestProrateFullMonthKeepsStructure(t *testing.T) {
	structure := compensation.Structure{Basic: d("30000"), PF: d("1800"), ProfessionalTax: d("200")}
	earnings, deductions := Prorate(structure, 30, 30)
	if !earnings.Basic.Equal(d("30000")) || !deductions.PF.Equal(d("1800")) {
		t.Fatalf("full month should not scale: %s %s", earnings.Basic, deductions.PF)
	}
}

func TestAttendanceNetDaysWorked(t *testing.T) {
	a := Attendance{DaysInMonth: 30, ArrearDays: 2, LOPRDays: 1, LOPDays: 4}
	if got := a.NetDaysWorked(); got != 29 {
		t.Fatalf("expected 29, got %d", got)
	}
}
