package chingus

import (
	"strconv"
	"strings"
)

// Query holds the raw, unvalidated member query parameters as they arrive over HTTP.
type Query struct {
	// Country is nil when the parameter was absent.
	Country         []string
	CountryCode     string
	Gender          string
	RoleType        string
	Role            string
	SoloProjectTier string
	VoyageTier      string
	Voyage          string
	YearJoined      string

	Page  string
	Limit string
	Sort  string
}

// Filter converts the raw parameters into a typed Filter. Empty strings are treated as
// absent, and a yearJoined that is not an integer produces no year filter. Invalid UTF-8
// is replaced with U+FFFD so no value can fail to compile as a pattern.
func (q Query) Filter() Filter {
	f := Filter{
		CountryCode:     someIfSet(q.CountryCode),
		Gender:          someIfSet(q.Gender),
		RoleType:        someIfSet(q.RoleType),
		Role:            someIfSet(q.Role),
		SoloProjectTier: someIfSet(q.SoloProjectTier),
		VoyageTier:      someIfSet(q.VoyageTier),
		Voyage:          someIfSet(q.Voyage),
	}
	if q.Country != nil {
		countries := make([]string, 0, len(q.Country))
		for _, c := range q.Country {
			countries = append(countries, validUTF8(c))
		}
		f.Country = Some(countries)
	}
	if y, err := strconv.Atoi(strings.TrimSpace(q.YearJoined)); err == nil {
		f.YearJoined = Some(y)
	}
	return f
}

// Paging returns the clamped pagination request.
func (q Query) Paging() Page {
	return ParsePage(q.Page, q.Limit)
}

func someIfSet(s string) Optional[string] {
	if s == "" {
		return Unspecified[string]()
	}
	return Some(validUTF8(s))
}

func validUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}
