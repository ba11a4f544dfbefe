package memberrepo

import (
	"errors"
	"testing"
)

func TestPredicate_Validate(t *testing.T) {
	t.Parallel()

	ok := Predicate{}.
		And(AnyOf{Rules: []Rule{ContainsMatch{Field: FieldCountryName, Value: "ind"}}}).
		And(NumericEquals{Field: FieldYearJoined, Value: 2023})
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}

	bad := Predicate{}.And(AnyOf{Rules: []Rule{LiteralEquals{Field: "password", Value: "x"}}})
	if err := bad.Validate(); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("Validate() err=%v, want ErrUnknownField", err)
	}
}

func TestPredicate_AndDoesNotAlias(t *testing.T) {
	t.Parallel()

	base := Predicate{Rules: make([]Rule, 0, 4)}
	a := base.And(LiteralEquals{Field: FieldVoyage, Value: "V1"})
	b := base.And(LiteralEquals{Field: FieldVoyage, Value: "V2"})
	if a.Rules[0].(LiteralEquals).Value != "V1" || b.Rules[0].(LiteralEquals).Value != "V2" {
		t.Fatalf("And() shared backing storage: a=%v b=%v", a, b)
	}
}

func TestPatterns(t *testing.T) {
	t.Parallel()

	if got := (ExactMatch{Field: FieldGender, Value: "MALE"}).Pattern(); got != "^MALE$" {
		t.Fatalf("ExactMatch.Pattern()=%q", got)
	}
	if got := (ContainsMatch{Field: FieldRoleType, Value: `UX/UI`}).Pattern(); got != "UX/UI" {
		t.Fatalf("ContainsMatch.Pattern()=%q", got)
	}
}
