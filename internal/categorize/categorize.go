// Package categorize maps transactions to category labels with an ordered
// table of pattern rules. The first matching rule wins.
package categorize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Category labels produced by the built-in table.
const (
	Income        = "Income"
	Dining        = "Dining"
	Transport     = "Transport"
	Groceries     = "Groceries"
	Utilities     = "Utilities"
	Housing       = "Housing"
	Subscriptions = "Subscriptions"
	Entertainment = "Entertainment"
	Shopping      = "Shopping"
	Health        = "Health"
	Loans         = "Loans"
	Fees          = "Fees"
	Transfers     = "Transfers"
	Cash          = "Cash"
	Uncategorized = "Uncategorized"
)

// Rule maps a pattern to a category. InflowOnly rules only apply to
// positive amounts.
type Rule struct {
	Category   string
	Pattern    *regexp.Regexp
	InflowOnly bool
}

// Keywords builds a case-insensitive whole-word pattern from literal words.
func Keywords(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func rule(category, pattern string) Rule {
	return Rule{Category: category, Pattern: regexp.MustCompile(`\b(?:` + pattern + `)\b`)}
}

// DefaultRules returns the built-in table. The income rule comes first so an
// inflow with salary or refund vocabulary is income whatever else it says.
// Dining precedes Transport so "uber eats" is not classed as a ride.
func DefaultRules() []Rule {
	income := rule(Income, `salary|wages?|payroll|pay run|refund|interest|dividends?`)
	income.InflowOnly = true

	return []Rule{
		income,
		rule(Dining, `uber\s*eats|menulog|doordash|deliveroo|mcdonald'?s?|kfc|hungry jack'?s|domino'?s|pizza|sushi|restaurant|cafe|coffee|starbucks|bakery`),
		rule(Transport, `uber|didi|taxi|cabcharge|opal|myki|parking|bp|shell|caltex|ampol|7-eleven|fuel|petrol|toll|linkt|train|qantas|jetstar`),
		rule(Groceries, `woolworths|coles|aldi|iga|harris farm|costco|supermarket|grocer`),
		rule(Utilities, `agl|origin energy|energyaustralia|telstra|optus|vodafone|electricity|internet|water`),
		rule(Housing, `rent|mortgage|real estate|strata`),
		rule(Subscriptions, `netflix|spotify|disney|stan|youtube|apple\.com|github`),
		rule(Entertainment, `cinemas?|hoyts|steam|ticketek|ticketmaster`),
		rule(Shopping, `amazon|ebay|kmart|target|big w|bunnings|jb hi-?fi|officeworks|ikea`),
		rule(Health, `pharmacy|chemist|medical|dental|doctor|hospital|medicare|physio`),
		rule(Loans, `loan|financial|finance|repayment`),
		rule(Fees, `fee|fees|overdrawn|overdraft`),
		rule(Transfers, `transfer|tfr|osko|payid|bpay`),
		rule(Cash, `atm|cash withdrawal`),
	}
}

// Engine evaluates a rule table top to bottom.
type Engine struct {
	rules []Rule
}

// New creates an Engine over rules, evaluated in the given order.
func New(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Default returns an Engine over DefaultRules.
func Default() *Engine {
	return New(DefaultRules())
}

// WithUserRules returns an Engine that evaluates user rules before the
// built-in table.
func WithUserRules(user []Rule) *Engine {
	rules := make([]Rule, 0, len(user)+len(DefaultRules()))
	rules = append(rules, user...)
	rules = append(rules, DefaultRules()...)
	return New(rules)
}

// Rules returns a copy of the engine's table.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Categorize returns the category of the first rule matching the lower-cased
// description and merchant, or Uncategorized.
func (e *Engine) Categorize(description, merchant string, amount decimal.Decimal) string {
	text := strings.ToLower(description + " " + merchant)
	for _, r := range e.rules {
		if r.InflowOnly && !amount.IsPositive() {
			continue
		}
		if r.Pattern.MatchString(text) {
			return r.Category
		}
	}
	return Uncategorized
}
