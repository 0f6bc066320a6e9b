// Package id generates the temporary identifiers attached to import batches
// and transaction candidates.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// batchLen is the number of hex characters of a batch ID kept in candidate IDs.
const batchLen = 8

// NewBatchID returns a fresh random batch identifier.
func NewBatchID() string {
	return uuid.NewString()
}

// FormatCandidateID returns a candidate ID like "1f0c2a9e-0007" for line 7 of
// batch "1f0c2a9e-...".
func FormatCandidateID(batchID string, line int) string {
	return fmt.Sprintf("%s-%04d", shortBatch(batchID), line)
}

func shortBatch(batchID string) string {
	s := strings.ReplaceAll(batchID, "-", "")
	if len(s) > batchLen {
		s = s[:batchLen]
	}
	return s
}
