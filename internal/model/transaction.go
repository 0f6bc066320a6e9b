package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the terminal classification of a processed row.
type Status string

const (
	StatusValid Status = "valid"
	StatusError Status = "error"
	// StatusWarning is reserved. Nothing assigns it yet, but stored data and
	// reports must keep it distinct from StatusValid.
	StatusWarning Status = "warning"
)

// ValidationError describes one problem found in a raw row. It is data
// attached to a candidate, not a Go error.
type ValidationError struct {
	Field   string
	Message string
	Value   string
}

func (e ValidationError) String() string {
	return e.Field + ": " + e.Message + " (" + e.Value + ")"
}

// TransactionCandidate is the normalized result of one input row.
type TransactionCandidate struct {
	ID          string
	Line        int       // 1-based line number in the source file
	Date        time.Time // zero when the date failed to parse
	Description string
	Amount      decimal.Decimal // positive = inflow, negative = outflow
	Category    string
	Merchant    string
	Balance     *decimal.Decimal // running balance, when the bank provides one
	Reference   string
	Status      Status
	Errors      []ValidationError
	Raw         RawRow
}

// DateString returns the ISO calendar date, or "" when unset.
func (c TransactionCandidate) DateString() string {
	if c.Date.IsZero() {
		return ""
	}
	return c.Date.Format("2006-01-02")
}

// Accepted is a candidate the reconciler decided to insert.
type Accepted struct {
	Candidate   TransactionCandidate
	Fingerprint string
	CategoryID  int64 // 0 when no category resolver was supplied
}

// Duplicate is a candidate skipped because its fingerprint was already stored
// or seen earlier in the batch.
type Duplicate struct {
	Candidate   TransactionCandidate
	Fingerprint string
}

// ImportOutcome summarizes one reconciliation run. It is not modified after
// it is returned.
type ImportOutcome struct {
	AccountID string
	Format    string
	Inserted  []Accepted
	Skipped   []Duplicate            // in file order
	Rejected  []TransactionCandidate // status=error rows
	Balance   decimal.Decimal
}

// InsertedCount returns the number of rows marked for insertion.
func (o *ImportOutcome) InsertedCount() int { return len(o.Inserted) }

// SkippedCount returns the number of rows skipped as duplicates.
func (o *ImportOutcome) SkippedCount() int { return len(o.Skipped) }

// RejectedCount returns the number of rows rejected as invalid.
func (o *ImportOutcome) RejectedCount() int { return len(o.Rejected) }
