package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for account name normalization.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail trims and lower-cases an email address. Emails are unique per account
// in this form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeCountryCode is the lookup form of a country code: trimmed and upper-cased.
func NormalizeCountryCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsKnownValue reports whether a dataset string carries a real value
// (non-empty and not the "N/A" sentinel).
func IsKnownValue(s string) bool {
	v := strings.TrimSpace(s)
	return v != "" && v != NotAvailable
}
