package memstore

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain/expense"
)

type Claims struct {
	reconcileOps
	tx bool
}

func (db *DB) Claims() *Claims {
	return &Claims{reconcileOps: reconcileOps{db: db}}
}

func (s *Claims) InTx(_ context.Context, fn func(expense.StoreAPI) error) error {
	if s.tx {
		return fn(s)
	}
	return s.db.inTx(func() error {
		return fn(&Claims{reconcileOps: s.reconcileOps, tx: true})
	})
}

func (s *Claims) Create(_ context.Context, c expense.Claim) (expense.Claim, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check("CreateClaim"); err != nil {
		return expense.Claim{}, err
	}
	c.ID = newID()
	c.AppliedAt = s.db.now()
	s.db.data.claims[c.ID] = c
	return s.db.withClaimName(c), nil
}

func (s *Claims) Get(_ context.Context, id string) (expense.Claim, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.claim(id)
}

func (s *Claims) GetForUpdate(ctx context.Context, id string) (expense.Claim, error) {
	return s.Get(ctx, id)
}

func (db *DB) claim(id string) (expense.Claim, error) {
	c, ok := db.data.claims[id]
	if !ok {
		return expense.Claim{}, expense.ErrClaimNotFound
	}
	return db.withClaimName(c), nil
}

func (s *Claims) Count(_ context.Context, filter expense.Filter) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.filterClaims(filter)), nil
}

func (s *Claims) List(_ context.Context, filter expense.Filter) ([]expense.Claim, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := s.db.filterClaims(filter)
	sort.SliceStable(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

func (db *DB) filterClaims(filter expense.Filter) []expense.Claim {
	var out []expense.Claim
	for _, c := range db.data.claims {
		if filter.EmployeeID != "" && c.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, db.withClaimName(c))
	}
	return out
}

func (s *Claims) ApprovedForUpdate(_ context.Context, employeeID string) ([]expense.Claim, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.approvedClaims(employeeID)
}

func (db *DB) approvedClaims(employeeID string) ([]expense.Claim, error) {
	if err := db.check("ApprovedForUpdate"); err != nil {
		return nil, err
	}
	out := db.filterClaims(expense.Filter{EmployeeID: employeeID, Status: expense.StatusApproved})
	sort.SliceStable(out, func(i, j int) bool { return out[i].AppliedAt.Before(out[j].AppliedAt) })
	return out, nil
}

func (s *Claims) ApprovedTotal(_ context.Context, employeeID string) (decimal.Decimal, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.approvedTotal(employeeID), nil
}

func (db *DB) approvedTotal(employeeID string) decimal.Decimal {
	total := decimal.Zero
	for _, c := range db.filterClaims(expense.Filter{EmployeeID: employeeID, Status: expense.StatusApproved}) {
		total = total.Add(c.Amount)
	}
	return total
}

func (s *Claims) SetReview(_ context.Context, id, reviewer, reason string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.data.claims[id]
	if !ok {
		return expense.ErrClaimNotFound
	}
	c.ApprovedBy = reviewer
	c.RejectionReason = reason
	s.db.data.claims[id] = c
	return nil
}
