package expense

import (
	"context"

	"backoffice/internal/domain/ledger"
	"backoffice/internal/domain/reconcile"
)

// Sweep pays every Approved claim of the employee inside the caller's
// transaction and returns the debits written, one per claim.
func Sweep(ctx context.Context, r *reconcile.Reconciler, store SweepStore, employeeID string) ([]ledger.Entry, error) {
	claims, err := store.ApprovedForUpdate(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	var debits []ledger.Entry
	for _, claim := range claims {
		res, err := r.Apply(ctx, store, payrollSettled{Claim: claim}, reconcile.StatusPaid)
		if err != nil {
			return nil, err
		}
		if res.Debit != nil {
			debits = append(debits, *res.Debit)
		}
	}
	return debits, nil
}
