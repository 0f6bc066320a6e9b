package importer

import "strings"

const quote = '"'

// Tokenize splits a comma-delimited line into fields.
func Tokenize(line string) []string {
	return TokenizeDelim(line, ',')
}

// TokenizeDelim splits line on delim. A field that starts with a double quote
// may contain the delimiter, and a doubled quote inside it is a literal
// quote. An unterminated quote runs to the end of the line. Quotes that do not
// open a field are kept as-is. It never fails.
func TokenizeDelim(line string, delim rune) []string {
	line = strings.TrimRight(line, "\r\n")

	var fields []string
	var b strings.Builder
	inQuotes := false
	fieldStart := true
	runes := []rune(line)

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case inQuotes && c == quote:
			if i+1 < len(runes) && runes[i+1] == quote {
				b.WriteRune(quote)
				i++
				continue
			}
			inQuotes = false
		case inQuotes:
			b.WriteRune(c)
		case c == delim:
			fields = append(fields, b.String())
			b.Reset()
			fieldStart = true
			continue
		case c == quote && fieldStart:
			inQuotes = true
		default:
			b.WriteRune(c)
		}
		fieldStart = false
	}
	return append(fields, b.String())
}
