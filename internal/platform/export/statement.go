package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"backoffice/internal/domain/ledger"
)

// StatementPDF renders a monthly Credit/Debit statement with its totals.
func StatementPDF(w io.Writer, st ledger.Statement) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Cash Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s %d", st.Month, st.Year))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	for _, col := range statementColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, e := range st.Entries {
		cells := []string{
			e.Date.Format("2006-01-02"),
			string(e.Kind),
			truncate(e.Category, 22),
			truncate(e.Description, 44),
			truncate(e.Reference, 22),
			e.Amount.StringFixed(2),
		}
		for i, col := range statementColumns {
			pdf.CellFormat(col.width, 6, cells[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, "Total credits: "+st.Position.Credits.StringFixed(2))
	pdf.Ln(6)
	pdf.Cell(0, 7, "Total debits: "+st.Position.Debits.StringFixed(2))
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Balance: "+st.Position.Balance.StringFixed(2))

	return pdf.Output(w)
}

type column struct {
	title string
	width float64
	align string
}

var statementColumns = []column{
	{"Date", 22, "L"},
	{"Kind", 15, "L"},
	{"Category", 30, "L"},
	{"Description", 65, "L"},
	{"Reference", 30, "L"},
	{"Amount", 28, "R"},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}
