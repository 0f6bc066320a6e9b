package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

const bom = "\ufeff"

// headerLabels are column names that mark a line as a header row.
var headerLabels = map[string]bool{
	"date": true, "posting date": true, "transaction date": true,
	"description": true, "narrative": true, "details": true, "transaction details": true,
	"amount": true, "debit": true, "credit": true, "debit amount": true, "credit amount": true,
	"balance": true,
}

var numericDate = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)

// Detect selects a format from the first non-empty line of a file. Headerless
// files whose first field is a day/month/year date select the registry's
// headerless format; otherwise the first format whose keywords all appear in
// the line wins. When nothing matches, the fallback format is returned. It
// returns ErrUnrecognizedFormat only when there is no usable line or the
// fallback is not registered.
func Detect(lines []string, reg *Registry, fallback string) (*model.BankFormat, error) {
	first, ok := firstLine(lines)
	if !ok {
		return nil, fmt.Errorf("%w: file has no content", ErrUnrecognizedFormat)
	}
	lower := strings.ToLower(first)

	fields := Tokenize(first)
	if !hasHeaderLabels(fields) {
		if numericDate.MatchString(strings.TrimSpace(fields[0])) {
			for _, f := range reg.Formats() {
				if f.Headerless {
					return f, nil
				}
			}
		}
	}

	for _, f := range reg.Formats() {
		if f.Headerless || len(f.Keywords) == 0 {
			continue
		}
		if containsAll(lower, f.Keywords) {
			return f, nil
		}
	}

	if f := reg.Get(fallback); f != nil {
		return f, nil
	}
	return nil, fmt.Errorf("%w: no layout matched and fallback %q is not registered", ErrUnrecognizedFormat, fallback)
}

// Lines splits file content into lines, dropping a leading byte order mark.
func Lines(data []byte) []string {
	s := strings.TrimPrefix(string(data), bom)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// SplitRows tokenizes the data rows of a file under format f. Blank lines are
// ignored. Up to f.HeaderRows leading non-blank lines are treated as headers
// when they carry column labels, and the last of them provides the
// column-name mapping. A line without labels ends the header section and is
// returned as data, so a headerless export read under a header format keeps
// every row and falls back to column indexes.
func SplitRows(lines []string, f *model.BankFormat) []model.RawRow {
	delim := f.Delimiter
	if delim == 0 {
		delim = ','
	}

	var header map[string]int
	inHeader := !f.Headerless && f.HeaderRows > 0
	skipped := 0
	var rows []model.RawRow
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := TokenizeDelim(line, delim)
		if inHeader && skipped < f.HeaderRows && hasHeaderLabels(fields) {
			skipped++
			header = headerIndex(fields)
			continue
		}
		inHeader = false
		rows = append(rows, model.RawRow{Line: i + 1, Fields: fields, Header: header})
	}
	return rows
}

func headerIndex(fields []string) map[string]int {
	m := make(map[string]int, len(fields))
	for i, h := range fields {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, dup := m[key]; !dup {
			m[key] = i
		}
	}
	return m
}

func firstLine(lines []string) (string, bool) {
	for _, l := range lines {
		l = strings.TrimPrefix(l, bom)
		if strings.TrimSpace(l) != "" {
			return l, true
		}
	}
	return "", false
}

func hasHeaderLabels(fields []string) bool {
	for _, f := range fields {
		if headerLabels[strings.ToLower(strings.TrimSpace(f))] {
			return true
		}
	}
	return false
}

func containsAll(lower string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(lower, k) {
			return false
		}
	}
	return true
}
