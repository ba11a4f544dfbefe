package domain

import "time"

// User is an account that can sign in, either through Google or with a password.
type User struct {
	ID    UserID
	Email string
	Name  string

	Image    *string
	GoogleID *string
	// PasswordHash is nil for accounts that only ever signed in through Google.
	PasswordHash *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether the account can use password login.
func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
