package compensation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Structure is the monthly salary template of one employee.
type Structure struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employeeId"`
	MonthlyCTC       decimal.Decimal `json:"monthlyCtc"`
	Basic            decimal.Decimal `json:"basic"`
	HRA              decimal.Decimal `json:"hra"`
	Conveyance       decimal.Decimal `json:"conveyance"`
	Medical          decimal.Decimal `json:"medical"`
	SpecialAllowance decimal.Decimal `json:"specialAllowance"`
	PF               decimal.Decimal `json:"pf"`
	ESI              decimal.Decimal `json:"esi"`
	ProfessionalTax  decimal.Decimal `json:"professionalTax"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type UpsertInput struct {
	EmployeeID       string          `json:"employeeId" validate:"required"`
	MonthlyCTC       decimal.Decimal `json:"monthlyCtc" validate:"gte=0,cents"`
	Basic            decimal.Decimal `json:"basic" validate:"gte=0,cents"`
	HRA              decimal.Decimal `json:"hra" validate:"gte=0,cents"`
	Conveyance       decimal.Decimal `json:"conveyance" validate:"gte=0,cents"`
	Medical          decimal.Decimal `json:"medical" validate:"gte=0,cents"`
	SpecialAllowance decimal.Decimal `json:"specialAllowance" validate:"gte=0,cents"`
	PF               decimal.Decimal `json:"pf" validate:"gte=0,cents"`
	ESI              decimal.Decimal `json:"esi" validate:"gte=0,cents"`
	ProfessionalTax  decimal.Decimal `json:"professionalTax" validate:"gte=0,cents"`
}

func (in UpsertInput) Structure() Structure {
	return Structure{
		EmployeeID:       in.EmployeeID,
		MonthlyCTC:       in.MonthlyCTC,
		Basic:            in.Basic,
		HRA:              in.HRA,
		Conveyance:       in.Conveyance,
		Medical:          in.Medical,
		SpecialAllowance: in.SpecialAllowance,
		PF:               in.PF,
		ESI:              in.ESI,
		ProfessionalTax:  in.ProfessionalTax,
	}
}
