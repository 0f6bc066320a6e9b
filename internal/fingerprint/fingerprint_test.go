package fingerprint

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var (
	day = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	amt = decimal.RequireFromString("-85.50")
)

func TestSum_Deterministic(t *testing.T) {
	var h Hasher
	a := h.Sum("u1", "acc1", day, "WOOLWORTHS 1234", amt, "")
	b := h.Sum("u1", "acc1", day, "WOOLWORTHS 1234", amt, "")

	assert.Equal(t, a, b)
	assert.Len(t, a, Length)
	assert.Regexp(t, `^[0-9a-f]{16}$`, a)
}

func TestSum_IgnoresCaseAndWhitespace(t *testing.T) {
	var h Hasher
	base := h.Sum("u1", "acc1", day, "WOOLWORTHS 1234", amt, "")

	for _, desc := range []string{"woolworths 1234", "  Woolworths   1234 ", "WOOLWORTHS\t1234"} {
		assert.Equal(t, base, h.Sum("u1", "acc1", day, desc, amt, ""), desc)
	}
}

func TestSum_EachFieldMatters(t *testing.T) {
	var h Hasher
	base := h.Sum("u1", "acc1", day, "WOOLWORTHS 1234", amt, "")

	variants := map[string]string{
		"user":        h.Sum("u2", "acc1", day, "WOOLWORTHS 1234", amt, ""),
		"account":     h.Sum("u1", "acc2", day, "WOOLWORTHS 1234", amt, ""),
		"date":        h.Sum("u1", "acc1", day.AddDate(0, 0, 1), "WOOLWORTHS 1234", amt, ""),
		"description": h.Sum("u1", "acc1", day, "WOOLWORTHS 1235", amt, ""),
		"amount":      h.Sum("u1", "acc1", day, "WOOLWORTHS 1234", amt.Neg(), ""),
	}
	for field, fp := range variants {
		assert.NotEqual(t, base, fp, field)
	}

	// Sub-cent amounts are not rounded together.
	assert.NotEqual(t,
		h.Sum("u1", "acc1", day, "FX FEE", decimal.RequireFromString("-10.001"), ""),
		h.Sum("u1", "acc1", day, "FX FEE", decimal.RequireFromString("-10.004"), ""))

	// A separator inside a value cannot move it into the next field.
	assert.NotEqual(t,
		h.Sum("u|x", "a", day, "COFFEE", amt, ""),
		h.Sum("u", "x|a", day, "COFFEE", amt, ""))
	assert.NotEqual(t,
		h.Sum("u", "a", day, "COFFEE;4:-4.5", amt, ""),
		h.Sum("u", "a", day, "COFFEE", decimal.RequireFromString("-4.5"), ""))
}

func TestSum_AmountScaleInsensitive(t *testing.T) {
	var h Hasher
	assert.Equal(t,
		h.Sum("u", "a", day, "x", decimal.RequireFromString("-85.5"), ""),
		h.Sum("u", "a", day, "x", decimal.RequireFromString("-85.50"), ""))
}

func TestSum_Reference(t *testing.T) {
	plain := Hasher{}
	withRef := Hasher{UseReference: true}

	// Without the tiebreaker the reference is ignored.
	assert.Equal(t,
		plain.Sum("u", "a", day, "CHEQUE", amt, "000123"),
		plain.Sum("u", "a", day, "CHEQUE", amt, "000124"))

	assert.NotEqual(t,
		withRef.Sum("u", "a", day, "CHEQUE", amt, "000123"),
		withRef.Sum("u", "a", day, "CHEQUE", amt, "000124"))

	// An empty reference hashes like the plain five-field form.
	assert.Equal(t,
		plain.Sum("u", "a", day, "CHEQUE", amt, ""),
		withRef.Sum("u", "a", day, "CHEQUE", amt, " "))
}

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, "eftpos mcdonalds sydney", NormalizeDescription("  EFTPOS  McDonalds\tSYDNEY "))
	assert.Equal(t, "", NormalizeDescription("   "))
}
