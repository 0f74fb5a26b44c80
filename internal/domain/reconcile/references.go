package reconcile

import (
	"fmt"
	"time"
)

func SalaryReference(employeeID string, periodEnd time.Time) string {
	return fmt.Sprintf("SAL-%s-%s", employeeID, periodEnd.Format("012006"))
}

func ExpenseClaimReference(claimID string) string {
	return "EXP-" + claimID
}

func InvoiceReference(invoiceNumber string) string {
	return "INV-" + invoiceNumber
}

func PurchaseOrderReference(poNumber string) string {
	return "PO-" + poNumber
}
