package memberrepo

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
)

// Repo is an in-memory implementation of memberrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	// records keeps insertion order, which is the order ties are reported in.
	records []domain.Member
}

func NewRepo() *Repo {
	return &Repo{}
}

// NewRepoWith returns a repo preloaded with ms.
func NewRepoWith(ms []domain.Member) *Repo {
	return &Repo{records: slices.Clone(ms)}
}

func (r *Repo) Find(ctx context.Context, p memberrepo.Predicate, sortKeys []memberrepo.SortKey, skip, limit int) ([]domain.Member, error) {
	_ = ctx
	match, err := compile(p)
	if err != nil {
		return nil, err
	}
	for _, k := range sortKeys {
		if !k.Field.Valid() {
			return nil, fmt.Errorf("%w: %q", memberrepo.ErrUnknownField, k.Field)
		}
	}

	r.mu.RLock()
	out := make([]domain.Member, 0)
	for _, m := range r.records {
		if match(m) {
			out = append(out, m)
		}
	}
	r.mu.RUnlock()

	sortMembers(out, sortKeys)

	if skip < 0 {
		skip = 0
	}
	if skip >= len(out) {
		return []domain.Member{}, nil
	}
	out = out[skip:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repo) Count(ctx context.Context, p memberrepo.Predicate) (int64, error) {
	_ = ctx
	match, err := compile(p)
	if err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, m := range r.records {
		if match(m) {
			n++
		}
	}
	return n, nil
}

func (r *Repo) GroupByCountry(ctx context.Context, p memberrepo.Predicate) ([]memberrepo.CountryGroup, error) {
	_ = ctx
	match, err := compile(p)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := make(map[string]int)
	groups := make([]memberrepo.CountryGroup, 0)
	for _, m := range r.records {
		if !match(m) {
			continue
		}
		i, ok := idx[m.CountryCode]
		if !ok {
			i = len(groups)
			idx[m.CountryCode] = i
			groups = append(groups, memberrepo.CountryGroup{CountryCode: m.CountryCode})
		}
		g := &groups[i]
		g.Count++
		if !slices.Contains(g.Names, m.CountryName) {
			g.Names = append(g.Names, m.CountryName)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	return groups, nil
}

func (r *Repo) ReplaceAll(ctx context.Context, ms []domain.Member) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = slices.Clone(ms)
	return len(ms), nil
}

type matcher func(domain.Member) bool

func compile(p memberrepo.Predicate) (matcher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ms := make([]matcher, 0, len(p.Rules))
	for _, rule := range p.Rules {
		m, err := compileRule(rule)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return func(rec domain.Member) bool {
		for _, m := range ms {
			if !m(rec) {
				return false
			}
		}
		return true
	}, nil
}

func compileRule(rule memberrepo.Rule) (matcher, error) {
	switch v := rule.(type) {
	case memberrepo.ExactMatch:
		return patternMatcher(v.Field, v.Pattern(), v.CaseInsensitive)
	case memberrepo.ContainsMatch:
		return patternMatcher(v.Field, v.Pattern(), true)
	case memberrepo.NumericEquals:
		if v.Field != memberrepo.FieldYearJoined {
			return nil, fmt.Errorf("%w: numeric compare on %q", memberrepo.ErrUnsupportedRule, v.Field)
		}
		return func(m domain.Member) bool { return m.YearJoined == v.Value }, nil
	case memberrepo.LiteralEquals:
		return func(m domain.Member) bool {
			s, ok := stringField(m, v.Field)
			return ok && s == v.Value
		}, nil
	case memberrepo.AnyOf:
		branches := make([]matcher, 0, len(v.Rules))
		for _, nested := range v.Rules {
			b, err := compileRule(nested)
			if err != nil {
				return nil, err
			}
			branches = append(branches, b)
		}
		return func(m domain.Member) bool {
			for _, b := range branches {
				if b(m) {
					return true
				}
			}
			return false
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", memberrepo.ErrUnsupportedRule, rule)
	}
}

func patternMatcher(f memberrepo.Field, pattern string, caseInsensitive bool) (matcher, error) {
	if caseInsensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern for %q: %w", f, err)
	}
	return func(m domain.Member) bool {
		s, ok := stringField(m, f)
		return ok && re.MatchString(s)
	}, nil
}

// stringField returns the string value of f. Non-string fields report false.
func stringField(m domain.Member, f memberrepo.Field) (string, bool) {
	switch f {
	case memberrepo.FieldGender:
		return string(m.Gender), true
	case memberrepo.FieldCountryCode:
		return m.CountryCode, true
	case memberrepo.FieldCountryName:
		return m.CountryName, true
	case memberrepo.FieldGoal:
		return m.Goal, true
	case memberrepo.FieldSource:
		return m.Source, true
	case memberrepo.FieldRoleType:
		return m.RoleType, true
	case memberrepo.FieldVoyageRole:
		return m.VoyageRole, true
	case memberrepo.FieldSoloProjectTier:
		return m.SoloProjectTier, true
	case memberrepo.FieldVoyageTier:
		return m.VoyageTier, true
	case memberrepo.FieldVoyage:
		return m.Voyage, true
	default:
		return "", false
	}
}

func sortMembers(ms []domain.Member, keys []memberrepo.SortKey) {
	sort.SliceStable(ms, func(i, j int) bool {
		for _, k := range keys {
			c := compareField(ms[i], ms[j], k.Field)
			if c == 0 {
				continue
			}
			if k.Descending {
				return c > 0
			}
			return c < 0
		}
		return string(ms[i].ID) < string(ms[j].ID)
	})
}

func compareField(a, b domain.Member, f memberrepo.Field) int {
	switch f {
	case memberrepo.FieldTimestamp:
		return a.Timestamp.Compare(b.Timestamp)
	case memberrepo.FieldYearJoined:
		return a.YearJoined - b.YearJoined
	}
	sa, _ := stringField(a, f)
	sb, _ := stringField(b, f)
	return strings.Compare(sa, sb)
}
