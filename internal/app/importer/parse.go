// Package importer loads the raw demographics export into the member store.
package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/chingu-voyages/demographics-api/internal/domain"
)

// rawEntry mirrors one object of the export. Keys are the spreadsheet column titles.
type rawEntry struct {
	Timestamp       flexString `json:"Timestamp"`
	Gender          flexString `json:"Gender"`
	CountryCode     flexString `json:"Country Code"`
	CountryName     flexString `json:"Country name (from Country)"`
	Goal            flexString `json:"Goal"`
	Source          flexString `json:"Source"`
	RoleType        flexString `json:"Role Type"`
	VoyageRole      flexString `json:"Voyage Role"`
	SoloProjectTier flexString `json:"Solo Project Tier"`
	VoyageTier      flexString `json:"Voyage Tier"`
	Voyage          flexString `json:"Voyage (from Voyage Signups)"`
}

// flexString accepts a string, a number, null, or an array whose first element is one
// of those. Lookup columns in the export arrive as single-element arrays.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case b[0] == '[':
		var items []flexString
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		if len(items) == 0 {
			*f = ""
			return nil
		}
		*f = items[0]
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	default:
		*f = flexString(b)
		return nil
	}
}

func (f flexString) String() string {
	return strings.TrimSpace(string(f))
}

// Rejection records an entry that was skipped and why.
type Rejection struct {
	Index  int
	Reason string
}

// Result is the outcome of parsing an export.
type Result struct {
	Members  []domain.Member
	Rejected []Rejection
}

// timestampLayouts are tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Parse reads a JSON array of export entries. Entries with an unparseable timestamp or
// an unknown gender are rejected; the rest are normalized and given IDs from newID.
func Parse(r io.Reader, newID func() domain.MemberID) (Result, error) {
	var entries []rawEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return Result{}, fmt.Errorf("decode export: %w", err)
	}

	res := Result{Members: make([]domain.Member, 0, len(entries))}
	for i, e := range entries {
		m, reason := normalize(e, newID)
		if reason != "" {
			res.Rejected = append(res.Rejected, Rejection{Index: i, Reason: reason})
			continue
		}
		res.Members = append(res.Members, m)
	}
	return res, nil
}

func normalize(e rawEntry, newID func() domain.MemberID) (domain.Member, string) {
	ts, ok := parseTimestamp(e.Timestamp.String())
	if !ok {
		return domain.Member{}, fmt.Sprintf("invalid timestamp %q", e.Timestamp.String())
	}
	g, ok := domain.ParseGender(e.Gender.String())
	if !ok {
		return domain.Member{}, fmt.Sprintf("unknown gender %q", e.Gender.String())
	}

	m := domain.NewMember(newID(), ts, g)
	m.CountryCode = domain.NormalizeCountryCode(e.CountryCode.String())
	m.CountryName = e.CountryName.String()
	m.Goal = e.Goal.String()
	m.Source = e.Source.String()
	m.RoleType = e.RoleType.String()
	m.VoyageRole = e.VoyageRole.String()
	m.SoloProjectTier = e.SoloProjectTier.String()
	m.VoyageTier = e.VoyageTier.String()
	m.Voyage = e.Voyage.String()
	return m, ""
}
