package chingus

import (
	"sort"

	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/platform/geo"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
)

// Aggregate turns store groups into the enriched country view: it picks a display name,
// orders by count descending (ties keep store order) and attaches coordinates.
func Aggregate(groups []memberrepo.CountryGroup, coords *geo.Table) []CountryCount {
	out := make([]CountryCount, 0, len(groups))
	for _, g := range groups {
		cc := CountryCount{
			CountryCode: g.CountryCode,
			CountryName: chooseName(g.Names),
			Count:       g.Count,
		}
		if c, ok := coords.Lookup(g.CountryCode); ok {
			cc.Coordinates = &c
		}
		out = append(out, cc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// chooseName returns the first name that is present and not "N/A".
func chooseName(names []string) *string {
	for _, n := range names {
		if domain.IsKnownValue(n) {
			name := n
			return &name
		}
	}
	return nil
}
