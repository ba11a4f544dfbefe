package chingus

import (
	"strings"
	"unicode"

	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
)

// DefaultSort orders newest records first.
var DefaultSort = []memberrepo.SortKey{{Field: memberrepo.FieldTimestamp, Descending: true}}

// ParseSort reads a sort expression such as "-timestamp,countryCode" or "voyage -yearJoined".
// A leading "-" sorts descending. Fields that are not member fields are ignored, as are
// repeats of a field already listed. An expression with no usable field yields DefaultSort.
func ParseSort(raw string) []memberrepo.SortKey {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	keys := make([]memberrepo.SortKey, 0, len(tokens))
	seen := make(map[memberrepo.Field]bool, len(tokens))
	for _, tok := range tokens {
		desc := false
		switch {
		case strings.HasPrefix(tok, "-"):
			desc = true
			tok = tok[1:]
		case strings.HasPrefix(tok, "+"):
			tok = tok[1:]
		}
		f := memberrepo.Field(tok)
		if !f.Valid() || seen[f] {
			continue
		}
		seen[f] = true
		keys = append(keys, memberrepo.SortKey{Field: f, Descending: desc})
	}
	if len(keys) == 0 {
		return append([]memberrepo.SortKey(nil), DefaultSort...)
	}
	return keys
}
