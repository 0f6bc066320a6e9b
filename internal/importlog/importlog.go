// Package importlog keeps an append-only CSV audit trail of import runs.
package importlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Results recorded for a run.
const (
	ResultCommitted = "committed"
	ResultDryRun    = "dry_run"
	ResultRejected  = "rejected"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp time.Time
	BatchID   string
	File      string
	AccountID string
	Format    string
	Result    string
	Inserted  int
	Skipped   int
	Rejected  int
	Balance   decimal.Decimal
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,batch_id,file,account_id,format,result,inserted,skipped,rejected,balance"

const (
	numFields    = 10
	logDir       = "logs"
	logFile      = "logs/import-log.csv"
	colTimestamp = 0
	colBatchID   = 1
	colFile      = 2
	colAccountID = 3
	colFormat    = 4
	colResult    = 5
	colInserted  = 6
	colSkipped   = 7
	colRejected  = 8
	colBalance   = 9
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colBatchID] = e.BatchID
	row[colFile] = e.File
	row[colAccountID] = e.AccountID
	row[colFormat] = e.Format
	row[colResult] = e.Result
	row[colInserted] = strconv.Itoa(e.Inserted)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	row[colRejected] = strconv.Itoa(e.Rejected)
	row[colBalance] = e.Balance.StringFixed(2)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	counts := make([]int, 3)
	for i, col := range []int{colInserted, colSkipped, colRejected} {
		if counts[i], err = strconv.Atoi(record[col]); err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
	}

	balance, err := decimal.NewFromString(record[colBalance])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing balance %q: %w", record[colBalance], err)
	}

	return Entry{
		Timestamp: ts,
		BatchID:   record[colBatchID],
		File:      record[colFile],
		AccountID: record[colAccountID],
		Format:    record[colFormat],
		Result:    record[colResult],
		Inserted:  counts[0],
		Skipped:   counts[1],
		Rejected:  counts[2],
		Balance:   balance,
	}, nil
}

// Append writes entries to <root>/logs/import-log.csv, creating the file and
// header if needed.
func Append(root string, entries []Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/import-log.csv, or nil if the
// file does not exist.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, logFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
