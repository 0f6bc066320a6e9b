// Package report writes per-row CSV review reports of an import run.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Header is the CSV header of a review report.
const Header = "outcome,line,date,description,amount,merchant,category,balance,reference,fingerprint,status,errors"

// Outcomes of a reported row.
const (
	Inserted = "inserted"
	Skipped  = "skipped"
	Rejected = "rejected"
)

const (
	numFields   = 12
	dateFormat  = "2006-01-02"
	errSep      = "; "
	colOutcome  = 0
	colLine     = 1
	colDate     = 2
	colDesc     = 3
	colAmount   = 4
	colMerchant = 5
	colCategory = 6
	colBalance  = 7
	colRef      = 8
	colFP       = 9
	colStatus   = 10
	colErrors   = 11
)

// Row is one line of a review report.
type Row struct {
	Outcome     string
	Line        int
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Merchant    string
	Category    string
	Balance     *decimal.Decimal
	Reference   string
	Fingerprint string
	Status      model.Status
	Errors      string
}

// Rows flattens an outcome into report rows ordered by source line.
func Rows(out *model.ImportOutcome) []Row {
	rows := make([]Row, 0, out.InsertedCount()+out.SkippedCount()+out.RejectedCount())
	for _, a := range out.Inserted {
		r := fromCandidate(Inserted, a.Candidate)
		r.Fingerprint = a.Fingerprint
		rows = append(rows, r)
	}
	for _, d := range out.Skipped {
		r := fromCandidate(Skipped, d.Candidate)
		r.Fingerprint = d.Fingerprint
		rows = append(rows, r)
	}
	for _, c := range out.Rejected {
		rows = append(rows, fromCandidate(Rejected, c))
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Line < rows[j].Line })
	return rows
}

func fromCandidate(outcome string, c model.TransactionCandidate) Row {
	msgs := make([]string, len(c.Errors))
	for i, e := range c.Errors {
		msgs[i] = e.String()
	}
	return Row{
		Outcome:     outcome,
		Line:        c.Line,
		Date:        c.Date,
		Description: c.Description,
		Amount:      c.Amount,
		Merchant:    c.Merchant,
		Category:    c.Category,
		Balance:     c.Balance,
		Reference:   c.Reference,
		Status:      c.Status,
		Errors:      strings.Join(msgs, errSep),
	}
}

// Write writes the report of out, header first.
func Write(w io.Writer, out *model.ImportOutcome) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range Rows(out) {
		if err := cw.Write(MarshalRow(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the report of out to path, creating parent directories.
func WriteFile(path string, out *model.ImportOutcome) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	if err := Write(f, out); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return f.Close()
}

// Read reads a review report.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading report CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var rows []Row
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MarshalRow converts a Row to a CSV record.
func MarshalRow(r Row) []string {
	rec := make([]string, numFields)
	rec[colOutcome] = r.Outcome
	rec[colLine] = strconv.Itoa(r.Line)
	if !r.Date.IsZero() {
		rec[colDate] = r.Date.Format(dateFormat)
	}
	rec[colDesc] = r.Description
	rec[colAmount] = r.Amount.StringFixed(2)
	rec[colMerchant] = r.Merchant
	rec[colCategory] = r.Category
	if r.Balance != nil {
		rec[colBalance] = r.Balance.StringFixed(2)
	}
	rec[colRef] = r.Reference
	rec[colFP] = r.Fingerprint
	rec[colStatus] = string(r.Status)
	rec[colErrors] = r.Errors
	return rec
}

// UnmarshalRow converts a CSV record to a Row.
func UnmarshalRow(record []string) (Row, error) {
	if len(record) != numFields {
		return Row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	line, err := strconv.Atoi(record[colLine])
	if err != nil {
		return Row{}, fmt.Errorf("parsing line %q: %w", record[colLine], err)
	}

	var date time.Time
	if record[colDate] != "" {
		date, err = time.Parse(dateFormat, record[colDate])
		if err != nil {
			return Row{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
		}
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var balance *decimal.Decimal
	if record[colBalance] != "" {
		b, err := decimal.NewFromString(record[colBalance])
		if err != nil {
			return Row{}, fmt.Errorf("parsing balance %q: %w", record[colBalance], err)
		}
		balance = &b
	}

	return Row{
		Outcome:     record[colOutcome],
		Line:        line,
		Date:        date,
		Description: record[colDesc],
		Amount:      amount,
		Merchant:    record[colMerchant],
		Category:    record[colCategory],
		Balance:     balance,
		Reference:   record[colRef],
		Fingerprint: record[colFP],
		Status:      model.Status(record[colStatus]),
		Errors:      record[colErrors],
	}, nil
}
