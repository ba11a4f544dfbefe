package memberrepo

import (
	"context"

	"github.com/chingu-voyages/demographics-api/internal/domain"
)

// Repository provides read access to member records plus the bulk replace used by imports.
//
// Find and Count are independent reads. Callers must not assume they observe the same snapshot.
type Repository interface {
	// Find returns matching records ordered by sort, skipping skip records and returning at most limit.
	// A limit <= 0 means no upper bound.
	Find(ctx context.Context, p Predicate, sort []SortKey, skip, limit int) ([]domain.Member, error)
	Count(ctx context.Context, p Predicate) (int64, error)

	// GroupByCountry groups matching records by country code, ordered by count descending.
	GroupByCountry(ctx context.Context, p Predicate) ([]CountryGroup, error)

	// ReplaceAll deletes every record and inserts ms, returning the number inserted.
	ReplaceAll(ctx context.Context, ms []domain.Member) (int, error)
}
