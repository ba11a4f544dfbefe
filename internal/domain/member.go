package domain

import (
	"strings"
	"time"
)

// Gender is the fixed set of gender values a member record may carry.
type Gender string

const (
	GenderMale           Gender = "MALE"
	GenderFemale         Gender = "FEMALE"
	GenderNonBinary      Gender = "NON-BINARY"
	GenderPreferNotToSay Gender = "PREFER NOT TO SAY"
	GenderOther          Gender = "OTHER"
)

var genders = []Gender{GenderMale, GenderFemale, GenderNonBinary, GenderPreferNotToSay, GenderOther}

// ParseGender maps a raw value onto the enumeration, ignoring case and surrounding whitespace.
func ParseGender(raw string) (Gender, bool) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	for _, g := range genders {
		if string(g) == v {
			return g, true
		}
	}
	return "", false
}

// NotAvailable is the sentinel the dataset uses for "value absent".
const NotAvailable = "N/A"

// Member is a community-member record from the demographics dataset.
//
// Records are only created by a full import; the API never mutates them.
type Member struct {
	ID MemberID

	Timestamp time.Time
	// YearJoined is always Timestamp's calendar year in UTC.
	YearJoined int
	Gender     Gender

	CountryCode string
	CountryName string

	Goal       string
	Source     string
	RoleType   string
	VoyageRole string

	SoloProjectTier string
	VoyageTier      string
	Voyage          string
}

// NewMember builds a record and derives YearJoined from the timestamp.
func NewMember(id MemberID, ts time.Time, g Gender) Member {
	ts = ts.UTC()
	return Member{ID: id, Timestamp: ts, YearJoined: ts.Year(), Gender: g}
}
