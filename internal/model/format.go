package model

import "strings"

// Column locates one semantic field in a row. Header is used when the file
// carries a header row; Index is used otherwise. Index < 0 with an empty
// Header means the format does not expose the field.
type Column struct {
	Header string
	Index  int
}

// NoColumn marks an absent field.
var NoColumn = Column{Index: -1}

// Present reports whether the column is configured.
func (c Column) Present() bool {
	return c.Header != "" || c.Index >= 0
}

// BankFormat describes one bank's CSV export layout.
type BankFormat struct {
	Name        string
	Bank        string
	Delimiter   rune
	DateGrammar string // e.g. "DD/MM/YYYY", "MM/DD/YYYY", "DD Mon YY"
	HeaderRows  int    // leading non-data rows
	Headerless  bool   // true when the file has no header row at all
	Keywords    []string

	Date        Column
	Description Column
	Debit       Column
	Credit      Column
	Amount      Column // single signed amount
	Balance     Column
	Reference   Column
}

// HasDebitCredit reports whether the format uses a debit/credit column pair.
func (f *BankFormat) HasDebitCredit() bool {
	return f.Debit.Present() && f.Credit.Present()
}

// HasSignedAmount reports whether the format uses a single signed amount.
func (f *BankFormat) HasSignedAmount() bool {
	return f.Amount.Present()
}

// RawRow is one tokenized input line.
type RawRow struct {
	Line   int
	Fields []string
	Header map[string]int // lower-cased header name -> field index, nil when headerless
}

// Field returns the trimmed value for c, or "" when absent.
func (r RawRow) Field(c Column) string {
	idx := -1
	if c.Header != "" && r.Header != nil {
		if i, ok := r.Header[strings.ToLower(c.Header)]; ok {
			idx = i
		}
	}
	if idx < 0 {
		idx = c.Index
	}
	if idx < 0 || idx >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[idx])
}
