// Package validate turns raw rows into transaction candidates and guards a
// whole file against importing when too few of its rows are usable.
package validate

import (
	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/merchant"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/normalize"
)

// Row normalizes one raw row under format f. Date, amount and description
// problems are collected as ValidationErrors; the status is error when any
// were found. Merchant and category are always filled in so a reviewer sees a
// best-effort label next to the errors.
func Row(row model.RawRow, f *model.BankFormat, engine *categorize.Engine, candidateID string) model.TransactionCandidate {
	c := model.TransactionCandidate{
		ID:   candidateID,
		Line: row.Line,
		Raw:  row,
	}

	rawDate := row.Field(f.Date)
	if d, ok := normalize.Date(rawDate, f.DateGrammar); ok {
		c.Date = d
	} else {
		msg := "date does not match " + f.DateGrammar
		if rawDate == "" {
			msg = "date is empty"
		}
		c.Errors = append(c.Errors, model.ValidationError{Field: normalize.FieldDate, Message: msg, Value: rawDate})
	}

	amount, amountErrs := normalize.Amount(row, f)
	c.Amount = amount
	c.Errors = append(c.Errors, amountErrs...)

	c.Description = row.Field(f.Description)
	if c.Description == "" {
		c.Errors = append(c.Errors, model.ValidationError{Field: normalize.FieldDescription, Message: "description is empty"})
	}

	c.Balance = normalize.Balance(row, f)
	c.Reference = normalize.Reference(row, f)
	c.Merchant = merchant.Extract(c.Description)
	c.Category = engine.Categorize(c.Description, c.Merchant, c.Amount)

	c.Status = model.StatusValid
	if len(c.Errors) > 0 {
		c.Status = model.StatusError
	}
	return c
}
