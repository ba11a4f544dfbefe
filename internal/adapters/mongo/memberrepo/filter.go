package memberrepo

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
)

// matchNothing is a filter no document satisfies.
var matchNothing = bson.M{"_id": bson.M{"$in": bson.A{}}}

// compileFilter renders p as a query document. Field names are the member field names,
// which are also the stored document keys.
func compileFilter(p memberrepo.Predicate) (bson.M, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	parts := make(bson.A, 0, len(p.Rules))
	for _, r := range p.Rules {
		f, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		parts = append(parts, f)
	}
	switch len(parts) {
	case 0:
		return bson.M{}, nil
	case 1:
		return parts[0].(bson.M), nil
	default:
		return bson.M{"$and": parts}, nil
	}
}

func compileRule(r memberrepo.Rule) (bson.M, error) {
	switch v := r.(type) {
	case memberrepo.ExactMatch:
		opts := ""
		if v.CaseInsensitive {
			opts = "i"
		}
		return bson.M{string(v.Field): primitive.Regex{Pattern: v.Pattern(), Options: opts}}, nil
	case memberrepo.ContainsMatch:
		return bson.M{string(v.Field): primitive.Regex{Pattern: v.Pattern(), Options: "i"}}, nil
	case memberrepo.NumericEquals:
		if v.Field != memberrepo.FieldYearJoined {
			return nil, fmt.Errorf("%w: numeric compare on %q", memberrepo.ErrUnsupportedRule, v.Field)
		}
		return bson.M{string(v.Field): v.Value}, nil
	case memberrepo.LiteralEquals:
		return bson.M{string(v.Field): v.Value}, nil
	case memberrepo.AnyOf:
		if len(v.Rules) == 0 {
			return matchNothing, nil
		}
		branches := make(bson.A, 0, len(v.Rules))
		for _, nested := range v.Rules {
			b, err := compileRule(nested)
			if err != nil {
				return nil, err
			}
			branches = append(branches, b)
		}
		return bson.M{"$or": branches}, nil
	default:
		return nil, fmt.Errorf("%w: %T", memberrepo.ErrUnsupportedRule, r)
	}
}

// compileSort renders sort keys with _id as the final tie-breaker.
func compileSort(keys []memberrepo.SortKey) (bson.D, error) {
	out := make(bson.D, 0, len(keys)+1)
	for _, k := range keys {
		if !k.Field.Valid() {
			return nil, fmt.Errorf("%w: %q", memberrepo.ErrUnknownField, k.Field)
		}
		dir := 1
		if k.Descending {
			dir = -1
		}
		out = append(out, bson.E{Key: string(k.Field), Value: dir})
	}
	return append(out, bson.E{Key: "_id", Value: 1}), nil
}
