package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
)

// ComputeTotals derives gross, total deductions and net from a breakdown.
func ComputeTotals(e Earnings, d Deductions) (gross, deductions, net decimal.Decimal) {
	gross = e.Total()
	deductions = d.Total()
	return gross, deductions, gross.Sub(deductions)
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// PeriodBounds returns the first and last day of the month.
func PeriodBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// WorkedDays is the full month unless the employee resigned within it, in
// which case it is the day of month of the resignation.
func WorkedDays(emp employee.Employee, year int, month time.Month) int {
	if emp.ResignedIn(year, month) {
		return emp.ResignedOn.Day()
	}
	return DaysInMonth(year, month)
}

// ProrationFactor is worked/days to four decimals, capped at 1.
func ProrationFactor(worked, days int) decimal.Decimal {
	if days <= 0 || worked >= days {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(worked)).Div(decimal.NewFromInt(int64(days))).Round(4)
}

// Prorate scales a salary structure by worked/days. Each component is rounded
// to two decimals; professional tax is charged in full.
func Prorate(s compensation.Structure, worked, days int) (Earnings, Deductions) {
	scale := func(v decimal.Decimal) decimal.Decimal {
		if days <= 0 || worked >= days {
			return v.Round(2)
		}
		return v.Mul(decimal.NewFromInt(int64(worked))).Div(decimal.NewFromInt(int64(days))).Round(2)
	}
	earnings := Earnings{
		Basic:            scale(s.Basic),
		HRA:              scale(s.HRA),
		Conveyance:       scale(s.Conveyance),
		Medical:          scale(s.Medical),
		SpecialAllowance: scale(s.SpecialAllowance),
	}
	deductions := Deductions{
		PF:              scale(s.PF),
		ESI:             scale(s.ESI),
		ProfessionalTax: s.ProfessionalTax,
	}
	return earnings, deductions
}
