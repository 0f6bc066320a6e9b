// Package normalize converts raw CSV tokens into typed values.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Field names used in validation errors.
const (
	FieldDate        = "date"
	FieldAmount      = "amount"
	FieldDebit       = "debit"
	FieldCredit      = "credit"
	FieldDescription = "description"
)

// grammarTokens map date grammar tokens to Go layout elements. Day and month
// use the unpadded forms so both "5/1/2024" and "05/01/2024" parse. Order
// matters: YYYY must be replaced before YY.
var grammarTokens = []struct{ token, layout string }{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"Mon", "Jan"},
	{"MM", "1"},
	{"DD", "2"},
}

// Layout converts a date grammar such as "DD/MM/YYYY" to a time layout.
func Layout(grammar string) string {
	out := grammar
	for _, g := range grammarTokens {
		out = strings.ReplaceAll(out, g.token, g.layout)
	}
	return out
}

// Date parses raw under grammar. It reports false instead of failing.
func Date(raw, grammar string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || grammar == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(Layout(grammar), raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var (
	noise = strings.NewReplacer(
		"A$", "", "US$", "", "NZ$", "",
		"$", "", "£", "", "€", "", "¥", "",
		",", "", " ", "", "\u00a0", "", "'", "",
	)
	currencyCode = regexp.MustCompile(`(?i)^(aud|usd|nzd|gbp|eur)|(aud|usd|nzd|gbp|eur)$`)
)

// Clean strips currency symbols, thousands separators and sign notation
// from an amount string. It returns the bare number and whether the value
// was written as negative via parentheses, a DR suffix or a trailing minus.
func Clean(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	neg := false

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "DR"):
		neg = !neg
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "CR"):
		s = s[:len(s)-2]
	}

	s = strings.TrimSpace(currencyCode.ReplaceAllString(strings.TrimSpace(s), ""))
	s = noise.Replace(s)

	if strings.HasSuffix(s, "-") {
		neg = !neg
		s = strings.TrimSuffix(s, "-")
	}
	s = strings.TrimPrefix(s, "+")
	return s, neg
}

// ParseAmount parses a cleaned amount string into a decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s, neg := Clean(raw)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// Amount derives the signed amount of a row. Formats with a debit/credit
// pair yield credit minus debit (both as magnitudes); formats with a single
// amount column keep its sign. On any error the amount is zero.
func Amount(row model.RawRow, f *model.BankFormat) (decimal.Decimal, []model.ValidationError) {
	if f.HasDebitCredit() {
		return pairAmount(row, f)
	}

	raw := row.Field(f.Amount)
	if raw == "" {
		return decimal.Zero, []model.ValidationError{{Field: FieldAmount, Message: "amount is empty", Value: raw}}
	}
	amt, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero, []model.ValidationError{{Field: FieldAmount, Message: "amount is not a number", Value: raw}}
	}
	return amt, nil
}

func pairAmount(row model.RawRow, f *model.BankFormat) (decimal.Decimal, []model.ValidationError) {
	debitRaw := row.Field(f.Debit)
	creditRaw := row.Field(f.Credit)
	if debitRaw == "" && creditRaw == "" {
		return decimal.Zero, []model.ValidationError{{Field: FieldAmount, Message: "debit and credit are both empty"}}
	}

	var errs []model.ValidationError
	amount := decimal.Zero
	if debitRaw != "" {
		d, err := ParseAmount(debitRaw)
		if err != nil {
			errs = append(errs, model.ValidationError{Field: FieldDebit, Message: "debit is not a number", Value: debitRaw})
		} else {
			amount = amount.Sub(d.Abs())
		}
	}
	if creditRaw != "" {
		c, err := ParseAmount(creditRaw)
		if err != nil {
			errs = append(errs, model.ValidationError{Field: FieldCredit, Message: "credit is not a number", Value: creditRaw})
		} else {
			amount = amount.Add(c.Abs())
		}
	}
	if len(errs) > 0 {
		return decimal.Zero, errs
	}
	return amount, nil
}

// Balance returns the running balance of a row, or nil when the format has
// no balance column or the value is blank or unparseable.
func Balance(row model.RawRow, f *model.BankFormat) *decimal.Decimal {
	if !f.Balance.Present() {
		return nil
	}
	raw := row.Field(f.Balance)
	if raw == "" {
		return nil
	}
	b, err := ParseAmount(raw)
	if err != nil {
		return nil
	}
	return &b
}

// Reference returns the bank-supplied reference token, if any.
func Reference(row model.RawRow, f *model.BankFormat) string {
	if !f.Reference.Present() {
		return ""
	}
	return row.Field(f.Reference)
}
