package memberrepo

import "fmt"

// Field names a filterable or sortable member field. Values match the JSON/document names.
type Field string

const (
	FieldTimestamp       Field = "timestamp"
	FieldYearJoined      Field = "yearJoined"
	FieldGender          Field = "gender"
	FieldCountryCode     Field = "countryCode"
	FieldCountryName     Field = "countryName"
	FieldGoal            Field = "goal"
	FieldSource          Field = "source"
	FieldRoleType        Field = "roleType"
	FieldVoyageRole      Field = "voyageRole"
	FieldSoloProjectTier Field = "soloProjectTier"
	FieldVoyageTier      Field = "voyageTier"
	FieldVoyage          Field = "voyage"
)

var knownFields = map[Field]struct{}{
	FieldTimestamp: {}, FieldYearJoined: {}, FieldGender: {}, FieldCountryCode: {},
	FieldCountryName: {}, FieldGoal: {}, FieldSource: {}, FieldRoleType: {},
	FieldVoyageRole: {}, FieldSoloProjectTier: {}, FieldVoyageTier: {}, FieldVoyage: {},
}

// Valid reports whether f is a known member field.
func (f Field) Valid() bool {
	_, ok := knownFields[f]
	return ok
}

// Rule is one match condition. The set of implementations is closed; stores switch on
// the concrete type.
type Rule interface {
	rule()
}

// ExactMatch matches when the whole field equals Value.
//
// Value is already regex-escaped by the caller, so Pattern can be handed to any
// regex-capable store verbatim.
type ExactMatch struct {
	Field           Field
	Value           string
	CaseInsensitive bool
}

// Pattern returns the anchored regular expression for the rule.
func (r ExactMatch) Pattern() string { return "^" + r.Value + "$" }

// ContainsMatch is a case-insensitive substring match. Value is already regex-escaped.
type ContainsMatch struct {
	Field Field
	Value string
}

// Pattern returns the unanchored regular expression for the rule.
func (r ContainsMatch) Pattern() string { return r.Value }

// NumericEquals matches an integer field exactly.
type NumericEquals struct {
	Field Field
	Value int
}

// LiteralEquals matches a string field by plain equality; no pattern semantics apply.
type LiteralEquals struct {
	Field Field
	Value string
}

// AnyOf matches when at least one nested rule matches. An empty AnyOf matches nothing.
type AnyOf struct {
	Rules []Rule
}

func (ExactMatch) rule()    {}
func (ContainsMatch) rule() {}
func (NumericEquals) rule() {}
func (LiteralEquals) rule() {}
func (AnyOf) rule()         {}

// Predicate is a conjunction of rules. The zero value matches every record.
type Predicate struct {
	Rules []Rule
}

// And returns a copy of p with r appended.
func (p Predicate) And(r Rule) Predicate {
	rules := make([]Rule, 0, len(p.Rules)+1)
	rules = append(rules, p.Rules...)
	return Predicate{Rules: append(rules, r)}
}

// Validate checks every field the predicate references.
func (p Predicate) Validate() error {
	for _, r := range p.Rules {
		if err := validateRule(r); err != nil {
			return err
		}
	}
	return nil
}

func validateRule(r Rule) error {
	var f Field
	switch v := r.(type) {
	case ExactMatch:
		f = v.Field
	case ContainsMatch:
		f = v.Field
	case NumericEquals:
		f = v.Field
	case LiteralEquals:
		f = v.Field
	case AnyOf:
		for _, nested := range v.Rules {
			if err := validateRule(nested); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedRule, r)
	}
	if !f.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return nil
}

// SortKey orders results by one field.
type SortKey struct {
	Field      Field
	Descending bool
}

// CountryGroup is the store-side result of grouping matching records by country code.
type CountryGroup struct {
	// CountryCode is the raw stored code; empty when records carry none.
	CountryCode string
	Count       int64
	// Names holds the distinct country names seen for the code in first-seen order.
	// An absent name is recorded as "".
	Names []string
}
