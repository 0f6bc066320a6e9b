package model

import "github.com/shopspring/decimal"

// Account is a destination account for imported transactions.
type Account struct {
	ID             string
	UserID         string
	Name           string
	Format         string // preferred bank format; empty means detect
	OpeningBalance decimal.Decimal
	Balance        decimal.Decimal // derived, see reconcile
}

// Category is a user-owned category row.
type Category struct {
	ID     int64
	UserID string
	Name   string
}
