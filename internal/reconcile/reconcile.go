// Package reconcile decides which candidates of an import batch are inserted
// and which are skipped as duplicates, and derives the resulting balance.
package reconcile

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/fingerprint"
	"github.com/tally-dev/tally/internal/model"
)

// AccountState is the stored state of the destination account, read once
// before reconciliation.
type AccountState struct {
	ID             string
	UserID         string
	OpeningBalance decimal.Decimal
	Fingerprints   map[string]struct{} // fingerprints of stored transactions
	Amounts        []decimal.Decimal   // amounts of stored transactions
}

// CategoryResolver maps a category label to the owning user's category ID,
// creating it if needed.
type CategoryResolver interface {
	ResolveCategory(ctx context.Context, userID, name string) (int64, error)
}

// Reconciler partitions candidates against an account's history.
type Reconciler struct {
	Hasher   fingerprint.Hasher
	Resolver CategoryResolver // optional
}

// Reconcile walks cands in file order. Error rows are rejected. Every other
// row is fingerprinted; a fingerprint already stored or already seen earlier
// in the batch is skipped, otherwise the row is accepted. The balance is the
// opening balance plus every stored amount plus every accepted amount.
func (r *Reconciler) Reconcile(ctx context.Context, cands []model.TransactionCandidate, state AccountState) (*model.ImportOutcome, error) {
	out := &model.ImportOutcome{AccountID: state.ID}

	seen := make(map[string]struct{}, len(state.Fingerprints)+len(cands))
	for fp := range state.Fingerprints {
		seen[fp] = struct{}{}
	}

	for _, c := range cands {
		if c.Status == model.StatusError {
			out.Rejected = append(out.Rejected, c)
			continue
		}

		fp := r.Hasher.Sum(state.UserID, state.ID, c.Date, c.Description, c.Amount, c.Reference)
		if _, dup := seen[fp]; dup {
			out.Skipped = append(out.Skipped, model.Duplicate{Candidate: c, Fingerprint: fp})
			continue
		}
		seen[fp] = struct{}{}

		acc := model.Accepted{Candidate: c, Fingerprint: fp}
		if r.Resolver != nil {
			catID, err := r.Resolver.ResolveCategory(ctx, state.UserID, c.Category)
			if err != nil {
				return nil, fmt.Errorf("resolving category %q for line %d: %w", c.Category, c.Line, err)
			}
			acc.CategoryID = catID
		}
		out.Inserted = append(out.Inserted, acc)
	}

	out.Balance = DeriveBalance(state.OpeningBalance, state.Amounts, out.Inserted)
	return out, nil
}

// DeriveBalance sums opening, the stored amounts and the accepted amounts.
func DeriveBalance(opening decimal.Decimal, stored []decimal.Decimal, accepted []model.Accepted) decimal.Decimal {
	total := opening
	for _, a := range stored {
		total = total.Add(a)
	}
	for _, a := range accepted {
		total = total.Add(a.Candidate.Amount)
	}
	return total
}
