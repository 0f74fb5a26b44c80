package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"backoffice/internal/domain/payroll"
)

const registerSheet = "Sheet1"

var registerHeader = []interface{}{
	"Employee", "Period Start", "Period End", "Basic", "HRA", "Conveyance", "Medical",
	"Special Allowance", "Bonus", "Incentives", "Reimbursements", "Gross",
	"PF", "ESI", "Professional Tax", "TDS", "Loss Of Pay", "Deductions", "Net", "Status",
}

// PayrollRegister writes one row per payroll record of a month as XLSX.
func PayrollRegister(w io.Writer, year int, month time.Month, records []payroll.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetCellValue(registerSheet, "A1", fmt.Sprintf("Payroll register %s %d", month, year)); err != nil {
		return err
	}
	if err := f.SetSheetRow(registerSheet, "A2", &registerHeader); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(registerHeader), 2)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(registerSheet, "A1", last, bold); err != nil {
		return err
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		e, d := rec.Earnings, rec.Deductions
		row := []interface{}{
			rec.EmployeeName,
			rec.PeriodStart.Format("2006-01-02"),
			rec.PeriodEnd.Format("2006-01-02"),
			e.Basic.InexactFloat64(), e.HRA.InexactFloat64(), e.Conveyance.InexactFloat64(),
			e.Medical.InexactFloat64(), e.SpecialAllowance.InexactFloat64(), e.Bonus.InexactFloat64(),
			e.Incentives.InexactFloat64(), e.Reimbursements.InexactFloat64(), rec.Gross.InexactFloat64(),
			d.PF.InexactFloat64(), d.ESI.InexactFloat64(), d.ProfessionalTax.InexactFloat64(),
			d.TDS.InexactFloat64(), d.LossOfPay.InexactFloat64(), rec.TotalDeductions.InexactFloat64(),
			rec.Net.InexactFloat64(),
			string(rec.Status),
		}
		if err := f.SetSheetRow(registerSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}
