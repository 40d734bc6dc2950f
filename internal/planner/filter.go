package planner

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SQL words that may appear bare in a filter without naming an attribute.
var filterKeywords = map[string]bool{
	"and": true, "or": true, "not": true, "between": true,
	"in": true, "like": true, "is": true, "null": true,
	"true": true, "false": true,
}

// filterAttrs extracts the attribute identifiers referenced by a filter
// expression. String literals, numbers and keywords are skipped; anything
// left must name a catalog attribute or the query is rejected upstream.
func filterAttrs(filter string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range scanIdents(filter) {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// qualifyFilter rewrites each attribute reference in the filter to its
// alias-qualified column, e.g. "amount > 10" becomes "t_1.amount > 10".
// qualify maps attribute name to "alias.column".
func qualifyFilter(filter string, qualify map[string]string) string {
	var b strings.Builder
	i := 0
	for i < len(filter) {
		r, size := utf8.DecodeRuneInString(filter[i:])
		switch {
		case r == '\'':
			j := i + 1
			for j < len(filter) && filter[j] != '\'' {
				j++
			}
			if j < len(filter) {
				j++
			}
			b.WriteString(filter[i:j])
			i = j
		case isIdentStart(r):
			j := identEnd(filter, i)
			word := filter[i:j]
			if q, ok := qualify[word]; ok {
				b.WriteString(q)
			} else {
				b.WriteString(word)
			}
			i = j
		default:
			b.WriteRune(r)
			i += size
		}
	}
	return b.String()
}

// scanIdents returns the bare identifiers of a filter in order of
// appearance, skipping quoted strings, numbers and keywords.
func scanIdents(filter string) []string {
	var out []string
	i := 0
	for i < len(filter) {
		r, size := utf8.DecodeRuneInString(filter[i:])
		switch {
		case r == '\'':
			i++
			for i < len(filter) && filter[i] != '\'' {
				i++
			}
			if i < len(filter) {
				i++
			}
		case isIdentStart(r):
			j := identEnd(filter, i)
			word := filter[i:j]
			if !filterKeywords[strings.ToLower(word)] {
				out = append(out, word)
			}
			i = j
		case unicode.IsDigit(r):
			j := i + size
			for j < len(filter) && (unicode.IsDigit(rune(filter[j])) || filter[j] == '.') {
				j++
			}
			i = j
		default:
			i += size
		}
	}
	return out
}

// identEnd returns the index just past the identifier starting at start.
func identEnd(s string, start int) int {
	i := start
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isIdentPart(r) {
			return i
		}
		i += size
	}
	return i
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
