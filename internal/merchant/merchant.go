// Package merchant derives a short merchant label from a bank description.
package merchant

import (
	"regexp"
	"strings"
	"unicode"
)

// Unknown is returned when nothing in the description survives filtering.
const Unknown = "Unknown Merchant"

// maxTokens is the most words kept in a label.
const maxTokens = 3

var prefix = regexp.MustCompile(`(?i)^\s*(?:` +
	`card\s+xx\d+|` +
	`visa\s+debit\s+purchase(?:\s+card\s+\d+)?|` +
	`debit\s+card\s+purchase|card\s+purchase|visa\s+purchase|` +
	`eftpos\s+purchase|eftpos|pos|` +
	`atm\s+withdrawal|atm|` +
	`transfer\s+(?:to|from)|transfer|` +
	`direct\s+(?:debit|credit)|bpay|osko\s+payment|payment\s+to|tap\s+and\s+pay` +
	`)\b[\s,:*-]*`)

var suffixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*value\s+date:?\s*\S*$`),
	regexp.MustCompile(`\s+\d{1,2}/\d{1,2}(?:/\d{2,4})?$`),
	regexp.MustCompile(`\s+\d{4,}$`),
	regexp.MustCompile(`(?i)\s+(?:au|aus|us|usa|nz|nzl|gb|gbr|uk|ca|can|ie|sg)$`),
}

// Extract strips card and transfer boilerplate, trailing dates, long digit
// runs and country codes from description, then keeps the first few
// meaningful words. It always returns a non-empty label.
func Extract(description string) string {
	s := strings.TrimSpace(description)

	for {
		next := prefix.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}

	for changed := true; changed; {
		changed = false
		for _, re := range suffixes {
			if next := re.ReplaceAllString(s, ""); next != s {
				s = next
				changed = true
			}
		}
	}

	var kept []string
	for _, tok := range strings.Fields(s) {
		tok = strings.Trim(tok, ",.*-:;#/")
		if !meaningful(tok) {
			continue
		}
		kept = append(kept, tok)
		if len(kept) == maxTokens {
			break
		}
	}
	if len(kept) == 0 {
		return Unknown
	}
	return strings.Join(kept, " ")
}

func meaningful(tok string) bool {
	if len([]rune(tok)) <= 1 {
		return false
	}
	letters, digits, other := 0, 0, 0
	for _, r := range tok {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		default:
			other++
		}
	}
	if letters == 0 && other == 0 {
		return false // purely numeric
	}
	// Short alphanumeric codes such as "xx1234" or "P0123ABCD".
	if letters > 0 && digits > 0 && other == 0 && len(tok) <= 10 {
		return false
	}
	return letters > 0
}
