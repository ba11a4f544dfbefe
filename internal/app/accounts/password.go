package accounts

import (
	"fmt"
	"unicode"
)

// PasswordPolicy defines requirements for password strength.
type PasswordPolicy struct {
	MinLength int
	// MaxBytes bounds the encoded length; bcrypt ignores input past 72 bytes.
	MaxBytes int

	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RequireSpecial   bool
}

// DefaultPasswordPolicy is the policy applied to self-registered accounts.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        8,
		MaxBytes:         72,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireDigit:     true,
	}
}

// Check returns one message per violated requirement, or nil when the password is acceptable.
func (p PasswordPolicy) Check(password string) []string {
	var problems []string
	if n := len([]rune(password)); n < p.MinLength {
		problems = append(problems, fmt.Sprintf("must be at least %d characters", p.MinLength))
	}
	if p.MaxBytes > 0 && len(password) > p.MaxBytes {
		problems = append(problems, fmt.Sprintf("must be at most %d bytes", p.MaxBytes))
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if p.RequireUppercase && !upper {
		problems = append(problems, "must contain an uppercase letter")
	}
	if p.RequireLowercase && !lower {
		problems = append(problems, "must contain a lowercase letter")
	}
	if p.RequireDigit && !digit {
		problems = append(problems, "must contain a digit")
	}
	if p.RequireSpecial && !special {
		problems = append(problems, "must contain a special character")
	}
	return problems
}
