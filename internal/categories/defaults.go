// Package categories holds the default category set and an in-memory
// category resolver for runs that must not touch the database.
package categories

import "github.com/tally-dev/tally/internal/categorize"

// Defaults returns the category names every new user starts with, in display
// order. They cover every label the built-in rule table can produce.
func Defaults() []string {
	return []string{
		categorize.Income,
		categorize.Groceries,
		categorize.Dining,
		categorize.Transport,
		categorize.Utilities,
		categorize.Housing,
		categorize.Subscriptions,
		categorize.Entertainment,
		categorize.Shopping,
		categorize.Health,
		categorize.Loans,
		categorize.Fees,
		categorize.Transfers,
		categorize.Cash,
		categorize.Uncategorized,
	}
}
