package validate

import (
	"errors"
	"fmt"

	"github.com/tally-dev/tally/internal/model"
)

// ErrNoRows is returned when a file holds no data rows at all.
var ErrNoRows = errors.New("file contains no transaction rows")

// DefaultMinValidFraction is the share of valid rows below which a file is
// rejected as probably mis-detected.
const DefaultMinValidFraction = 0.5

// Stats counts candidates by status.
type Stats struct {
	Total   int
	Valid   int
	Error   int
	Warning int
}

// ValidFraction returns Valid/Total, or 0 for an empty batch. Warnings are
// not counted as valid.
func (s Stats) ValidFraction() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Valid) / float64(s.Total)
}

func (s Stats) String() string {
	return fmt.Sprintf("%d rows: %d valid, %d error, %d warning", s.Total, s.Valid, s.Error, s.Warning)
}

// Summarize counts cands by status.
func Summarize(cands []model.TransactionCandidate) Stats {
	s := Stats{Total: len(cands)}
	for _, c := range cands {
		switch c.Status {
		case model.StatusValid:
			s.Valid++
		case model.StatusError:
			s.Error++
		case model.StatusWarning:
			s.Warning++
		}
	}
	return s
}

// RowError is the error list of one rejected row.
type RowError struct {
	Line   int
	Errors []model.ValidationError
}

// BatchRejectedError reports a file rejected by the batch guard. It carries
// the aggregate counts and every row's errors for diagnostics.
type BatchRejectedError struct {
	Stats       Stats
	MinFraction float64
	Rows        []RowError
}

func (e *BatchRejectedError) Error() string {
	return fmt.Sprintf("batch rejected: %.0f%% valid, need %.0f%% (%s)",
		e.Stats.ValidFraction()*100, e.MinFraction*100, e.Stats)
}

// CheckBatch rejects the whole batch when it is empty or its valid fraction
// is below minFraction. It returns nil when the batch may proceed.
func CheckBatch(cands []model.TransactionCandidate, minFraction float64) error {
	if len(cands) == 0 {
		return ErrNoRows
	}

	stats := Summarize(cands)
	if stats.ValidFraction() >= minFraction {
		return nil
	}

	rejected := &BatchRejectedError{Stats: stats, MinFraction: minFraction}
	for _, c := range cands {
		if len(c.Errors) > 0 {
			rejected.Rows = append(rejected.Rows, RowError{Line: c.Line, Errors: c.Errors})
		}
	}
	return rejected
}
