// Package fingerprint computes the duplicate-detection hash of a transaction.
//
// The hash covers user, account, calendar date, normalized description and
// signed amount. Two genuinely separate transactions sharing all five values
// collide; a Hasher with UseReference set adds the bank's reference token to
// tell them apart when the bank supplies one. Changing the hashed fields
// changes dedup results for every stored transaction, so it bumps Version.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Version identifies the field set and encoding hashed by Sum.
const Version = 2

// Length is the number of hex characters in a fingerprint.
const Length = 16

// Hasher computes fingerprints. The zero value hashes the five base fields.
type Hasher struct {
	UseReference bool
}

// Sum returns the fingerprint of one transaction. reference is ignored unless
// UseReference is set and reference is non-empty.
//
// Each field is written as "<len>:<value>;" so no field value can shift into
// its neighbour. The amount is hashed exactly, with trailing zeros dropped.
func (h Hasher) Sum(userID, accountID string, date time.Time, description string, amount decimal.Decimal, reference string) string {
	var b strings.Builder
	writeField(&b, userID)
	writeField(&b, accountID)
	writeField(&b, date.Format("2006-01-02"))
	writeField(&b, NormalizeDescription(description))
	writeField(&b, amount.String())
	if h.UseReference {
		if ref := strings.TrimSpace(reference); ref != "" {
			writeField(&b, "ref")
			writeField(&b, ref)
		}
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:Length]
}

func writeField(b *strings.Builder, v string) {
	b.WriteString(strconv.Itoa(len(v)))
	b.WriteByte(':')
	b.WriteString(v)
	b.WriteByte(';')
}

// NormalizeDescription lower-cases description and collapses runs of
// whitespace to single spaces.
func NormalizeDescription(description string) string {
	return strings.Join(strings.Fields(strings.ToLower(description)), " ")
}
