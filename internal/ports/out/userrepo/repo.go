package userrepo

import (
	"context"

	"github.com/chingu-voyages/demographics-api/internal/domain"
)

// Repository provides access to persisted accounts.
//
// Emails are stored in normalized form (see domain.NormalizeEmail) and are unique.
type Repository interface {
	Create(ctx context.Context, u domain.User) error
	// Update replaces the stored account with the same ID.
	Update(ctx context.Context, u domain.User) error

	GetByID(ctx context.Context, id domain.UserID) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}
