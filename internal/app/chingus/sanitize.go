package chingus

import "regexp"

// EscapeRegex prefixes every regular-expression metacharacter in s with a backslash
// so the result matches s literally when embedded in a pattern.
//
// The escaped set is . * + ? ^ $ { } ( ) | [ ] and \. No other characters change.
func EscapeRegex(s string) string {
	return regexp.QuoteMeta(s)
}
