package categorize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCategorize_DefaultTable(t *testing.T) {
	e := Default()

	tests := []struct {
		desc     string
		merchant string
		amount   string
		want     string
	}{
		{"WOOLWORTHS 1234", "WOOLWORTHS", "-85.50", Groceries},
		{"EFTPOS MCDONALDS SYDNEY AU", "MCDONALDS SYDNEY", "-12.40", Dining},
		{"Card xx1234 UBER EATS SYDNEY AUS", "UBER EATS SYDNEY", "-32.10", Dining},
		{"UBER *TRIP HELP.UBER.COM", "UBER TRIP", "-18.00", Transport},
		{"BP CONNECT PARRAMATTA", "BP CONNECT PARRAMATTA", "-70.00", Transport},
		{"Direct Debit, Nissan Financial", "Nissan Financial", "-410.22", Loans},
		{"NETFLIX.COM", "NETFLIX.COM", "-16.99", Subscriptions},
		{"TRANSFER TO SAVINGS 55512345", "SAVINGS", "-500.00", Transfers},
		{"SALARY ACME PTY LTD", "SALARY ACME PTY", "3200.00", Income},
		{"CHEQUE 000123", "", "-40.00", Uncategorized},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Categorize(tt.desc, tt.merchant, amt(tt.amount)))
		})
	}
}

func TestCategorize_IncomeRequiresInflow(t *testing.T) {
	e := Default()

	assert.Equal(t, Income, e.Categorize("INTEREST PAID", "INTEREST PAID", amt("4.12")))
	// Outflows with income vocabulary fall through to the rest of the table.
	assert.Equal(t, Uncategorized, e.Categorize("INTEREST CHARGED", "INTEREST CHARGED", amt("-4.12")))
	assert.Equal(t, Shopping, e.Categorize("AMAZON REFUND", "AMAZON REFUND", amt("-20.00")))
	assert.Equal(t, Income, e.Categorize("AMAZON REFUND", "AMAZON REFUND", amt("20.00")))
}

func TestCategorize_OrderDecidesOverlap(t *testing.T) {
	dining := rule(Dining, `uber\s*eats`)
	transport := rule(Transport, `uber`)

	diningFirst := New([]Rule{dining, transport})
	transportFirst := New([]Rule{transport, dining})

	assert.Equal(t, Dining, diningFirst.Categorize("UBER EATS SYDNEY", "", amt("-20")))
	assert.Equal(t, Transport, transportFirst.Categorize("UBER EATS SYDNEY", "", amt("-20")))
}

func TestCategorize_MatchesMerchant(t *testing.T) {
	e := New([]Rule{{Category: "Coffee", Pattern: Keywords("single o")}})

	assert.Equal(t, "Coffee", e.Categorize("SQ *4471 SURRY HILLS", "SINGLE O", amt("-5")))
}

func TestCategorize_WholeWords(t *testing.T) {
	e := Default()

	// "rent" must not match inside another word.
	assert.Equal(t, Uncategorized, e.Categorize("PARENTING MAGAZINE", "", amt("-9.00")))
	assert.Equal(t, Housing, e.Categorize("RENT PAYMENT APRIL", "", amt("-600.00")))
}

func TestWithUserRules_TakePrecedence(t *testing.T) {
	user := []Rule{{Category: "Work Lunch", Pattern: Keywords("mcdonalds")}}
	e := WithUserRules(user)

	assert.Equal(t, "Work Lunch", e.Categorize("EFTPOS MCDONALDS SYDNEY", "", amt("-12")))
	assert.Equal(t, Groceries, e.Categorize("WOOLWORTHS 1234", "", amt("-85.50")))
	assert.Len(t, e.Rules(), len(DefaultRules())+1)
}

func TestParseRules(t *testing.T) {
	data := []byte(`
rules:
  - category: Coffee
    keywords: [single o, campos]
  - category: Side Income
    pattern: '\bairtasker\b'
    inflow_only: true
`)
	rules, err := ParseRules(data)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "Coffee", rules[0].Category)
	assert.True(t, rules[0].Pattern.MatchString("campos coffee newtown"))
	assert.False(t, rules[0].InflowOnly)
	assert.True(t, rules[1].InflowOnly)

	e := New(rules)
	assert.Equal(t, "Side Income", e.Categorize("AIRTASKER PAYOUT", "", amt("150")))
	assert.Equal(t, Uncategorized, e.Categorize("AIRTASKER FEE", "", amt("-15")))
}

func TestParseRules_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing category", "rules:\n  - keywords: [x]\n"},
		{"no matcher", "rules:\n  - category: X\n"},
		{"both matchers", "rules:\n  - category: X\n    keywords: [a]\n    pattern: b\n"},
		{"bad pattern", "rules:\n  - category: X\n    pattern: '('\n"},
		{"bad yaml", "rules: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()

	rules, err := LoadRules(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, rules)

	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - category: Pets\n    keywords: [petbarn]\n"), 0o644))

	rules, err = LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Pets", rules[0].Category)
}
