package accounts

import (
	"time"

	"github.com/chingu-voyages/demographics-api/internal/domain"
)

// GoogleSignInInput is the profile the browser client received from Google.
type GoogleSignInInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"required"`
	Image    *string `json:"image"`
	GoogleID string  `json:"googleId" validate:"required"`
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the signed token issued for a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}
