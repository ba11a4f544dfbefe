package contracttest

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chingu-voyages/demographics-api/internal/domain"
	idempotencyport "github.com/chingu-voyages/demographics-api/internal/ports/out/idempotency"
	memberrepoport "github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
	userrepoport "github.com/chingu-voyages/demographics-api/internal/ports/out/userrepo"
)

type CleanupFunc = func()

type MemberRepoFactory func(t *testing.T) (memberrepoport.Repository, CleanupFunc)
type UserRepoFactory func(t *testing.T) (userrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      idempotencyport.Key("k-" + uuid.NewString()),
		Method:   "POST",
		Route:    "/api/auth/register",
		BodyHash: "",
	}
	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// The body hash is part of the identity.
	other := fp
	other.BodyHash = "different"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("expected miss for different body hash, ok=%v err=%v", ok, err)
	}
}

type fixture struct {
	label string
	m     domain.Member
}

func member(ts time.Time, g domain.Gender, code, name, roleType, voyageRole, voyage string) domain.Member {
	m := domain.NewMember(domain.MemberID(uuid.NewString()), ts, g)
	m.CountryCode = code
	m.CountryName = name
	m.RoleType = roleType
	m.VoyageRole = voyageRole
	m.SoloProjectTier = "Tier 2"
	m.VoyageTier = "Tier 2"
	m.Voyage = voyage
	m.Goal = "Gain experience"
	m.Source = "Search"
	return m
}

func memberFixtures() []fixture {
	return []fixture{
		{"us-male-2023", member(time.Date(2023, 1, 10, 12, 0, 0, 0, time.UTC), domain.GenderMale, "US", "United States", "Web Developer", "Software Developer", "V58")},
		{"us-female-2023", member(time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC), domain.GenderFemale, "US", "United States", "Data Scientist", "Data Scientist", "V58")},
		{"us-na-2022", member(time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC), domain.GenderNonBinary, "US", domain.NotAvailable, "Web Developer", "UI/UX Designer", "V57")},
		{"in-male-2024", member(time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC), domain.GenderMale, "IN", "India", "Web Developer", "Scrum Master", "V59")},
		{"io-female-2021", member(time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC), domain.GenderFemale, "IO", "Ind. Ocean Territory", "Python Developer", "Software Developer", "v58")},
	}
}

func RunMemberRepo(t *testing.T, newRepo MemberRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fx := memberFixtures()
	labels := make(map[domain.MemberID]string, len(fx))
	ms := make([]domain.Member, 0, len(fx))
	for _, f := range fx {
		labels[f.m.ID] = f.label
		ms = append(ms, f.m)
	}
	n, err := repo.ReplaceAll(ctx, ms)
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if n != len(ms) {
		t.Fatalf("ReplaceAll inserted %d, want %d", n, len(ms))
	}

	newestFirst := []memberrepoport.SortKey{{Field: memberrepoport.FieldTimestamp, Descending: true}}
	find := func(p memberrepoport.Predicate, sort []memberrepoport.SortKey, skip, limit int) []string {
		t.Helper()
		got, err := repo.Find(ctx, p, sort, skip, limit)
		if err != nil {
			t.Fatalf("Find: %v", err)
		}
		out := make([]string, 0, len(got))
		for _, m := range got {
			out = append(out, labels[m.ID])
		}
		return out
	}
	count := func(p memberrepoport.Predicate) int64 {
		t.Helper()
		c, err := repo.Count(ctx, p)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		return c
	}
	expect := func(name string, got, want []string) {
		t.Helper()
		if !slices.Equal(got, want) {
			t.Fatalf("%s: got %v, want %v", name, got, want)
		}
	}
	where := func(rules ...memberrepoport.Rule) memberrepoport.Predicate {
		return memberrepoport.Predicate{Rules: rules}
	}

	// Unfiltered, newest first.
	expect("all", find(memberrepoport.Predicate{}, newestFirst, 0, 0),
		[]string{"in-male-2024", "us-female-2023", "us-male-2023", "us-na-2022", "io-female-2021"})
	if c := count(memberrepoport.Predicate{}); c != 5 {
		t.Fatalf("Count all=%d, want 5", c)
	}

	// Skip and limit.
	expect("page", find(memberrepoport.Predicate{}, newestFirst, 1, 2), []string{"us-female-2023", "us-male-2023"})
	expect("past end", find(memberrepoport.Predicate{}, newestFirst, 10, 2), []string{})

	// Stored values round-trip.
	got, err := repo.Find(ctx, where(memberrepoport.LiteralEquals{Field: memberrepoport.FieldVoyage, Value: "V59"}), newestFirst, 0, 0)
	if err != nil || len(got) != 1 {
		t.Fatalf("Find V59: len=%d err=%v", len(got), err)
	}
	want := fx[3].m
	if got[0].ID != want.ID || !got[0].Timestamp.Equal(want.Timestamp) || got[0].YearJoined != 2024 ||
		got[0].Gender != want.Gender || got[0].CountryName != "India" || got[0].VoyageRole != "Scrum Master" ||
		got[0].Goal != want.Goal || got[0].Source != want.Source {
		t.Fatalf("round trip: got %+v, want %+v", got[0], want)
	}

	// Anchored, case-insensitive exact match: "male" must not match FEMALE.
	male := where(memberrepoport.ExactMatch{Field: memberrepoport.FieldGender, Value: "male", CaseInsensitive: true})
	expect("gender", find(male, newestFirst, 0, 0), []string{"in-male-2024", "us-male-2023"})
	if c := count(male); c != 2 {
		t.Fatalf("Count gender=%d, want 2", c)
	}
	code := where(memberrepoport.ExactMatch{Field: memberrepoport.FieldCountryCode, Value: "us", CaseInsensitive: true})
	if c := count(code); c != 3 {
		t.Fatalf("Count countryCode=%d, want 3", c)
	}
	caseSensitive := where(memberrepoport.ExactMatch{Field: memberrepoport.FieldCountryCode, Value: "us"})
	if c := count(caseSensitive); c != 0 {
		t.Fatalf("Count case-sensitive countryCode=%d, want 0", c)
	}

	// Escaped patterns match literally.
	literalDot := where(memberrepoport.ContainsMatch{Field: memberrepoport.FieldCountryName, Value: `ind\.`})
	expect("escaped dot", find(literalDot, newestFirst, 0, 0), []string{"io-female-2021"})
	ind := where(memberrepoport.ContainsMatch{Field: memberrepoport.FieldCountryName, Value: "IND"})
	expect("contains", find(ind, newestFirst, 0, 0), []string{"in-male-2024", "io-female-2021"})

	// Numeric and literal equality.
	year := where(memberrepoport.NumericEquals{Field: memberrepoport.FieldYearJoined, Value: 2023})
	expect("year", find(year, newestFirst, 0, 0), []string{"us-female-2023", "us-male-2023"})
	voyage := where(memberrepoport.LiteralEquals{Field: memberrepoport.FieldVoyage, Value: "V58"})
	if c := count(voyage); c != 2 {
		t.Fatalf("Count voyage=%d, want 2 (literal match is case-sensitive)", c)
	}

	// Disjunction, including the empty one.
	either := where(memberrepoport.AnyOf{Rules: []memberrepoport.Rule{
		memberrepoport.ContainsMatch{Field: memberrepoport.FieldCountryName, Value: "india"},
		memberrepoport.ContainsMatch{Field: memberrepoport.FieldCountryName, Value: "states"},
	}})
	if c := count(either); c != 3 {
		t.Fatalf("Count AnyOf=%d, want 3", c)
	}
	none := where(memberrepoport.AnyOf{})
	if c := count(none); c != 0 {
		t.Fatalf("Count empty AnyOf=%d, want 0", c)
	}
	expect("empty AnyOf", find(none, newestFirst, 0, 0), []string{})

	// Conjunction.
	both := where(
		memberrepoport.ExactMatch{Field: memberrepoport.FieldGender, Value: "FEMALE", CaseInsensitive: true},
		memberrepoport.LiteralEquals{Field: memberrepoport.FieldVoyage, Value: "V58"},
	)
	expect("and", find(both, newestFirst, 0, 0), []string{"us-female-2023"})
	role := where(memberrepoport.ContainsMatch{Field: memberrepoport.FieldVoyageRole, Value: "software"})
	expect("voyageRole", find(role, newestFirst, 0, 0), []string{"us-male-2023", "io-female-2021"})

	// Multi-key sort.
	byCode := []memberrepoport.SortKey{
		{Field: memberrepoport.FieldCountryCode},
		{Field: memberrepoport.FieldTimestamp, Descending: true},
	}
	expect("sort", find(memberrepoport.Predicate{}, byCode, 0, 0),
		[]string{"in-male-2024", "io-female-2021", "us-female-2023", "us-male-2023", "us-na-2022"})

	// Unknown fields are rejected at the boundary.
	if _, err := repo.Count(ctx, where(memberrepoport.LiteralEquals{Field: "password", Value: "x"})); !errors.Is(err, memberrepoport.ErrUnknownField) {
		t.Fatalf("Count unknown field err=%v, want ErrUnknownField", err)
	}

	// Grouping.
	groups, err := repo.GroupByCountry(ctx, memberrepoport.Predicate{})
	if err != nil {
		t.Fatalf("GroupByCountry: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("GroupByCountry len=%d, want 3: %+v", len(groups), groups)
	}
	if groups[0].CountryCode != "US" || groups[0].Count != 3 {
		t.Fatalf("first group=%+v, want US x3", groups[0])
	}
	names := slices.Clone(groups[0].Names)
	slices.Sort(names)
	if !slices.Equal(names, []string{domain.NotAvailable, "United States"}) {
		t.Fatalf("US names=%v", groups[0].Names)
	}
	rest := []string{groups[1].CountryCode, groups[2].CountryCode}
	slices.Sort(rest)
	if !slices.Equal(rest, []string{"IN", "IO"}) || groups[1].Count != 1 || groups[2].Count != 1 {
		t.Fatalf("remaining groups=%+v", groups[1:])
	}

	groups, err = repo.GroupByCountry(ctx, male)
	if err != nil {
		t.Fatalf("GroupByCountry filtered: %v", err)
	}
	if len(groups) != 2 || groups[0].Count != 1 || groups[1].Count != 1 {
		t.Fatalf("filtered groups=%+v", groups)
	}
	groups, err = repo.GroupByCountry(ctx, none)
	if err != nil || len(groups) != 0 {
		t.Fatalf("GroupByCountry empty AnyOf: len=%d err=%v", len(groups), err)
	}

	// ReplaceAll drops previous records.
	if _, err := repo.ReplaceAll(ctx, ms[:1]); err != nil {
		t.Fatalf("ReplaceAll second: %v", err)
	}
	if c := count(memberrepoport.Predicate{}); c != 1 {
		t.Fatalf("Count after replace=%d, want 1", c)
	}
}

func RunUserRepo(t *testing.T, newRepo UserRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	hash := "$2a$04$abcdefghijklmnopqrstuv"
	email := "ada-" + uuid.NewString() + "@example.com"
	u := domain.User{
		ID:           domain.UserID(uuid.NewString()),
		Email:        email,
		Name:         "Ada Lovelace",
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != u.ID || got.Name != u.Name || !got.HasPassword() || got.GoogleID != nil || got.Image != nil {
		t.Fatalf("GetByEmail=%+v, want %+v", got, u)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt=%s, want %s", got.CreatedAt, now)
	}

	// Email uniqueness.
	dup := u
	dup.ID = domain.UserID(uuid.NewString())
	if err := repo.Create(ctx, dup); !errors.Is(err, userrepoport.ErrEmailTaken) {
		t.Fatalf("Create duplicate err=%v, want ErrEmailTaken", err)
	}

	// Update links a Google identity.
	gid := "google-123"
	img := "https://img.example/ada.png"
	got.GoogleID = &gid
	got.Image = &img
	got.Name = "Ada King"
	got.UpdatedAt = now.Add(time.Minute)
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if again.Name != "Ada King" || again.GoogleID == nil || *again.GoogleID != gid || again.Image == nil || *again.Image != img {
		t.Fatalf("after update=%+v", again)
	}

	if _, err := repo.GetByID(ctx, domain.UserID(uuid.NewString())); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("GetByID missing err=%v, want ErrNotFound", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody-"+uuid.NewString()+"@example.com"); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("GetByEmail missing err=%v, want ErrNotFound", err)
	}
	missing := u
	missing.ID = domain.UserID(uuid.NewString())
	missing.Email = "ghost-" + uuid.NewString() + "@example.com"
	if err := repo.Update(ctx, missing); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("Update missing err=%v, want ErrNotFound", err)
	}
}
