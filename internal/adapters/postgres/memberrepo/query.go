package memberrepo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
)

var columns = map[memberrepo.Field]string{
	memberrepo.FieldTimestamp:       "joined_at",
	memberrepo.FieldYearJoined:      "year_joined",
	memberrepo.FieldGender:          "gender",
	memberrepo.FieldCountryCode:     "country_code",
	memberrepo.FieldCountryName:     "country_name",
	memberrepo.FieldGoal:            "goal",
	memberrepo.FieldSource:          "source",
	memberrepo.FieldRoleType:        "role_type",
	memberrepo.FieldVoyageRole:      "voyage_role",
	memberrepo.FieldSoloProjectTier: "solo_project_tier",
	memberrepo.FieldVoyageTier:      "voyage_tier",
	memberrepo.FieldVoyage:          "voyage",
}

func column(f memberrepo.Field) (string, error) {
	c, ok := columns[f]
	if !ok {
		return "", fmt.Errorf("%w: %q", memberrepo.ErrUnknownField, f)
	}
	return c, nil
}

// where accumulates placeholders as rules are compiled.
type where struct {
	args []any
}

func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

// compileWhere renders p as a SQL boolean expression. The zero predicate renders as TRUE.
func compileWhere(p memberrepo.Predicate) (string, []any, error) {
	w := &where{}
	parts := make([]string, 0, len(p.Rules))
	for _, r := range p.Rules {
		s, err := w.rule(r)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return "TRUE", nil, nil
	}
	return strings.Join(parts, " AND "), w.args, nil
}

func (w *where) rule(r memberrepo.Rule) (string, error) {
	switch v := r.(type) {
	case memberrepo.ExactMatch:
		col, err := column(v.Field)
		if err != nil {
			return "", err
		}
		op := "~"
		if v.CaseInsensitive {
			op = "~*"
		}
		return col + " " + op + " " + w.arg(v.Pattern()), nil
	case memberrepo.ContainsMatch:
		col, err := column(v.Field)
		if err != nil {
			return "", err
		}
		return col + " ~* " + w.arg(v.Pattern()), nil
	case memberrepo.NumericEquals:
		if v.Field != memberrepo.FieldYearJoined {
			return "", fmt.Errorf("%w: numeric compare on %q", memberrepo.ErrUnsupportedRule, v.Field)
		}
		return "year_joined = " + w.arg(v.Value), nil
	case memberrepo.LiteralEquals:
		col, err := column(v.Field)
		if err != nil {
			return "", err
		}
		if v.Field == memberrepo.FieldTimestamp || v.Field == memberrepo.FieldYearJoined {
			return "", fmt.Errorf("%w: literal compare on %q", memberrepo.ErrUnsupportedRule, v.Field)
		}
		return col + " = " + w.arg(v.Value), nil
	case memberrepo.AnyOf:
		if len(v.Rules) == 0 {
			return "FALSE", nil
		}
		branches := make([]string, 0, len(v.Rules))
		for _, nested := range v.Rules {
			s, err := w.rule(nested)
			if err != nil {
				return "", err
			}
			branches = append(branches, s)
		}
		return "(" + strings.Join(branches, " OR ") + ")", nil
	default:
		return "", fmt.Errorf("%w: %T", memberrepo.ErrUnsupportedRule, r)
	}
}

// compileOrder renders sort keys with id as the final tie-breaker.
func compileOrder(keys []memberrepo.SortKey) (string, error) {
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		col, err := column(k.Field)
		if err != nil {
			return "", err
		}
		if k.Descending {
			col += " DESC"
		}
		parts = append(parts, col)
	}
	parts = append(parts, "id")
	return strings.Join(parts, ", "), nil
}
