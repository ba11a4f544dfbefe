package chingus

import (
	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/platform/geo"
)

// Optional distinguishes an omitted parameter from one that was supplied.
type Optional[T any] struct {
	specified bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) Value() T          { return o.value }

// Filter is the typed set of member filters a caller may supply.
type Filter struct {
	// Country values are OR-combined. A supplied empty list matches nothing.
	Country         Optional[[]string]
	CountryCode     Optional[string]
	Gender          Optional[string]
	RoleType        Optional[string]
	Role            Optional[string]
	SoloProjectTier Optional[string]
	VoyageTier      Optional[string]
	Voyage          Optional[string]
	YearJoined      Optional[int]
}

// ListResult is one page of members plus the total match count.
type ListResult struct {
	Page       int
	Limit      int
	Total      int64
	TotalPages int
	Data       []domain.Member
}

// CountryCount is one row of the aggregate-by-country view.
type CountryCount struct {
	CountryCode string
	// CountryName is nil when no record in the group carried a usable name.
	CountryName *string
	Count       int64
	// Coordinates is nil when the code is not in the coordinate table.
	Coordinates *geo.Coordinates
}
