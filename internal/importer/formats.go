package importer

import "github.com/tally-dev/tally/internal/model"

func col(header string, index int) model.Column {
	return model.Column{Header: header, Index: index}
}

// DefaultRegistry returns a registry with all built-in bank formats.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(CommBank())
	r.Register(Westpac())
	r.Register(NAB())
	r.Register(Chase())
	r.Register(ANZ())
	return r
}

// CommBank is the headerless layout: date, signed amount, description, balance.
func CommBank() *model.BankFormat {
	return &model.BankFormat{
		Name:        "commbank",
		Bank:        "Commonwealth Bank",
		Delimiter:   ',',
		DateGrammar: "DD/MM/YYYY",
		Headerless:  true,
		Date:        col("", 0),
		Amount:      col("", 1),
		Description: col("", 2),
		Balance:     col("", 3),
		Debit:       model.NoColumn,
		Credit:      model.NoColumn,
		Reference:   model.NoColumn,
	}
}

// ANZ uses a debit/credit pair with a trailing running balance.
func ANZ() *model.BankFormat {
	return &model.BankFormat{
		Name:        "anz",
		Bank:        "ANZ",
		Delimiter:   ',',
		DateGrammar: "DD/MM/YYYY",
		HeaderRows:  1,
		Keywords:    []string{"date", "description", "debit", "credit"},
		Date:        col("Date", 0),
		Description: col("Description", 1),
		Debit:       col("Debit", 2),
		Credit:      col("Credit", 3),
		Balance:     col("Balance", 4),
		Amount:      model.NoColumn,
		Reference:   model.NoColumn,
	}
}

// Westpac exports a narrative column and a serial number usable as a reference.
func Westpac() *model.BankFormat {
	return &model.BankFormat{
		Name:        "westpac",
		Bank:        "Westpac",
		Delimiter:   ',',
		DateGrammar: "DD/MM/YYYY",
		HeaderRows:  1,
		Keywords:    []string{"narrative", "debit amount", "credit amount"},
		Date:        col("Date", 1),
		Description: col("Narrative", 2),
		Debit:       col("Debit Amount", 3),
		Credit:      col("Credit Amount", 4),
		Balance:     col("Balance", 5),
		Reference:   col("Serial", 7),
		Amount:      model.NoColumn,
	}
}

// NAB uses a single signed amount and "15 Jan 24" style dates.
func NAB() *model.BankFormat {
	return &model.BankFormat{
		Name:        "nab",
		Bank:        "National Australia Bank",
		Delimiter:   ',',
		DateGrammar: "DD Mon YY",
		HeaderRows:  1,
		Keywords:    []string{"transaction details", "transaction type"},
		Date:        col("Date", 0),
		Amount:      col("Amount", 1),
		Description: col("Transaction Details", 5),
		Balance:     col("Balance", 6),
		Debit:       model.NoColumn,
		Credit:      model.NoColumn,
		Reference:   model.NoColumn,
	}
}

// Chase is the Chase checking export with US month-first dates.
func Chase() *model.BankFormat {
	return &model.BankFormat{
		Name:        "chase",
		Bank:        "Chase",
		Delimiter:   ',',
		DateGrammar: "MM/DD/YYYY",
		HeaderRows:  1,
		Keywords:    []string{"posting date", "check or slip"},
		Date:        col("Posting Date", 1),
		Description: col("Description", 2),
		Amount:      col("Amount", 3),
		Balance:     col("Balance", 5),
		Reference:   col("Check or Slip #", 6),
		Debit:       model.NoColumn,
		Credit:      model.NoColumn,
	}
}
