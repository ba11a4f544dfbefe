package memberrepo

import (
	"errors"
	"testing"

	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
)

func TestCompileWhere_Empty(t *testing.T) {
	t.Parallel()

	sql, args, err := compileWhere(memberrepo.Predicate{})
	if err != nil || sql != "TRUE" || len(args) != 0 {
		t.Fatalf("compileWhere()=%q %v %v", sql, args, err)
	}
}

func TestCompileWhere_Rules(t *testing.T) {
	t.Parallel()

	p := memberrepo.Predicate{Rules: []memberrepo.Rule{
		memberrepo.AnyOf{Rules: []memberrepo.Rule{
			memberrepo.ContainsMatch{Field: memberrepo.FieldCountryName, Value: "india"},
			memberrepo.ContainsMatch{Field: memberrepo.FieldCountryName, Value: `u\.s`},
		}},
		memberrepo.ExactMatch{Field: memberrepo.FieldGender, Value: "MALE", CaseInsensitive: true},
		memberrepo.ExactMatch{Field: memberrepo.FieldCountryCode, Value: "US"},
		memberrepo.NumericEquals{Field: memberrepo.FieldYearJoined, Value: 2023},
		memberrepo.LiteralEquals{Field: memberrepo.FieldVoyage, Value: "V58"},
	}}
	sql, args, err := compileWhere(p)
	if err != nil {
		t.Fatalf("compileWhere() err=%v", err)
	}
	want := "(country_name ~* $1 OR country_name ~* $2) AND gender ~* $3 AND country_code ~ $4 AND year_joined = $5 AND voyage = $6"
	if sql != want {
		t.Fatalf("sql=%q\nwant %q", sql, want)
	}
	wantArgs := []any{"india", `u\.s`, "^MALE$", "^US$", 2023, "V58"}
	if len(args) != len(wantArgs) {
		t.Fatalf("args=%v", args)
	}
	for i := range args {
		if args[i] != wantArgs[i] {
			t.Fatalf("args[%d]=%v, want %v", i, args[i], wantArgs[i])
		}
	}
}

func TestCompileWhere_EmptyAnyOfIsFalse(t *testing.T) {
	t.Parallel()

	sql, _, err := compileWhere(memberrepo.Predicate{Rules: []memberrepo.Rule{memberrepo.AnyOf{}}})
	if err != nil || sql != "FALSE" {
		t.Fatalf("compileWhere()=%q %v", sql, err)
	}
}

func TestCompileWhere_UnknownField(t *testing.T) {
	t.Parallel()

	_, _, err := compileWhere(memberrepo.Predicate{Rules: []memberrepo.Rule{
		memberrepo.LiteralEquals{Field: "1=1; DROP TABLE members", Value: "x"},
	}})
	if !errors.Is(err, memberrepo.ErrUnknownField) {
		t.Fatalf("err=%v, want ErrUnknownField", err)
	}
}

func TestCompileOrder(t *testing.T) {
	t.Parallel()

	got, err := compileOrder([]memberrepo.SortKey{
		{Field: memberrepo.FieldTimestamp, Descending: true},
		{Field: memberrepo.FieldCountryCode},
	})
	if err != nil || got != "joined_at DESC, country_code, id" {
		t.Fatalf("compileOrder()=%q %v", got, err)
	}
	if _, err := compileOrder([]memberrepo.SortKey{{Field: "nope"}}); !errors.Is(err, memberrepo.ErrUnknownField) {
		t.Fatalf("err=%v, want ErrUnknownField", err)
	}
}
