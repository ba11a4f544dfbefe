package chingus

import (
	"strings"

	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
)

// BuildPredicate translates f into a store predicate. Every value that ends up in a
// pattern is escaped first; voyage is compared verbatim.
func BuildPredicate(f Filter) memberrepo.Predicate {
	var p memberrepo.Predicate

	if f.Country.IsSpecified() {
		if rule, ok := countryRule(f.Country.Value()); ok {
			p = p.And(rule)
		}
	}
	if v, ok := nonEmpty(f.CountryCode); ok {
		p = p.And(memberrepo.ExactMatch{Field: memberrepo.FieldCountryCode, Value: EscapeRegex(v), CaseInsensitive: true})
	}
	if v, ok := nonEmpty(f.Gender); ok {
		p = p.And(memberrepo.ExactMatch{Field: memberrepo.FieldGender, Value: EscapeRegex(v), CaseInsensitive: true})
	}
	if v, ok := nonEmpty(f.RoleType); ok {
		p = p.And(contains(memberrepo.FieldRoleType, v))
	}
	if v, ok := nonEmpty(f.Role); ok {
		p = p.And(contains(memberrepo.FieldVoyageRole, v))
	}
	if v, ok := nonEmpty(f.SoloProjectTier); ok {
		p = p.And(contains(memberrepo.FieldSoloProjectTier, v))
	}
	if v, ok := nonEmpty(f.VoyageTier); ok {
		p = p.And(contains(memberrepo.FieldVoyageTier, v))
	}
	if v, ok := nonEmpty(f.Voyage); ok {
		p = p.And(memberrepo.LiteralEquals{Field: memberrepo.FieldVoyage, Value: v})
	}
	if f.YearJoined.IsSpecified() {
		p = p.And(memberrepo.NumericEquals{Field: memberrepo.FieldYearJoined, Value: f.YearJoined.Value()})
	}
	return p
}

// countryRule ORs one contains rule per non-blank value. A list whose every value is
// blank contributes nothing; an empty list yields an AnyOf that matches nothing.
func countryRule(values []string) (memberrepo.Rule, bool) {
	rules := make([]memberrepo.Rule, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		rules = append(rules, contains(memberrepo.FieldCountryName, v))
	}
	if len(values) > 0 && len(rules) == 0 {
		return nil, false
	}
	return memberrepo.AnyOf{Rules: rules}, true
}

func contains(field memberrepo.Field, v string) memberrepo.ContainsMatch {
	return memberrepo.ContainsMatch{Field: field, Value: EscapeRegex(v)}
}

func nonEmpty(o Optional[string]) (string, bool) {
	if !o.IsSpecified() || o.Value() == "" {
		return "", false
	}
	return o.Value(), true
}
