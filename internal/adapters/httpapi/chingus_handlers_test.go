package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	memmemberrepo "github.com/chingu-voyages/demographics-api/internal/adapters/memory/memberrepo"
	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
)

type failingRepo struct {
	memberrepo.Repository
}

var errStoreDown = errors.New("connection refused: 10.0.0.7:27017")

func (failingRepo) Find(context.Context, memberrepo.Predicate, []memberrepo.SortKey, int, int) ([]domain.Member, error) {
	return nil, errStoreDown
}

func (failingRepo) Count(context.Context, memberrepo.Predicate) (int64, error) {
	return 0, errStoreDown
}

func (failingRepo) GroupByCountry(context.Context, memberrepo.Predicate) ([]memberrepo.CountryGroup, error) {
	return nil, errStoreDown
}

type aggregateRow struct {
	CountryCode string          `json:"countryCode"`
	CountryName *string         `json:"countryName"`
	Count       int64           `json:"count"`
	Coordinates *coordinatesDTO `json:"coordinates"`
}

func listIDs(res listChingusResponse) []string {
	ids := make([]string, 0, len(res.Data))
	for _, m := range res.Data {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestListChingus_DefaultsNewestFirst(t *testing.T) {
	t.Parallel()

	rec := newTestEnv(t).get(t, "/api/chingus")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var res listChingusResponse
	decode(t, rec, &res)
	if res.Page != 1 || res.Limit != 20 || res.Total != 4 || res.TotalPages != 1 {
		t.Fatalf("res=%+v", res)
	}
	if got := strings.Join(listIDs(res), ","); got != "m4,m3,m2,m1" {
		t.Fatalf("order=%s", got)
	}
}

func TestListChingus_PaginationClamps(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	cases := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"page=-3&limit=1000", 1, 100},
		{"page=abc&limit=abc", 1, 20},
		{"page=0&limit=0", 1, 1},
		{"page=2&limit=3", 2, 3},
	}
	for _, tc := range cases {
		var res listChingusResponse
		decode(t, env.get(t, "/api/chingus?"+tc.query), &res)
		if res.Page != tc.wantPage || res.Limit != tc.wantLimit {
			t.Fatalf("%s: page=%d limit=%d", tc.query, res.Page, res.Limit)
		}
	}

	var res listChingusResponse
	decode(t, env.get(t, "/api/chingus?page=2&limit=3"), &res)
	if res.TotalPages != 2 || len(res.Data) != 1 || res.Data[0].ID != "m1" {
		t.Fatalf("page 2: %+v", res)
	}
}

func TestListChingus_Filters(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	cases := []struct {
		query string
		want  string
	}{
		{"gender=male", "m3,m1"},
		{"gender=MAL", ""},
		{"countryCode=us", "m2,m1"},
		{"country=ind&country=united", "m3,m2"},
		{"country=.*", ""},
		{"yearJoined=2023", "m3,m2"},
		{"yearJoined=twenty", "m4,m3,m2,m1"},
		{"voyage=V42&sort=timestamp", "m1,m2,m3,m4"},
		{"voyage=v42", ""},
		{"role=software&gender=non-binary", "m4"},
		{"roleType=web&countryCode=IN", "m3"},
	}
	for _, tc := range cases {
		rec := env.get(t, "/api/chingus?"+tc.query)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", tc.query, rec.Code)
		}
		var res listChingusResponse
		decode(t, rec, &res)
		if got := strings.Join(listIDs(res), ","); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.query, got, tc.want)
		}
	}
}

func TestBindChingusQuery_CountryPresence(t *testing.T) {
	t.Parallel()

	vals := url.Values{}
	q := bindChingusQuery(vals)
	if q.Country != nil {
		t.Fatalf("absent country should stay nil, got %#v", q.Country)
	}
	vals.Set("country", "")
	q = bindChingusQuery(vals)
	if q.Country == nil {
		t.Fatalf("supplied country should be non-nil")
	}

	vals = url.Values{"country": {"India", "Peru"}, "gender": {"male", "female"}}
	q = bindChingusQuery(vals)
	if len(q.Country) != 2 || q.Country[1] != "Peru" {
		t.Fatalf("country=%#v", q.Country)
	}
	if q.Gender != "male" {
		t.Fatalf("repeated scalar should keep the first value, got %q", q.Gender)
	}
}

func TestListChingus_StoreFailure_StableMessage(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithRepo(t, failingRepo{}, RouterOptions{})
	env.srv.Production = true

	rec := env.get(t, "/api/chingus")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	var er errorResponse
	decode(t, rec, &er)
	if er.Message != "Server error" || er.Success {
		t.Fatalf("er=%+v", er)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.7") {
		t.Fatalf("store error leaked: %s", rec.Body.String())
	}
}

func TestListChingus_StoreFailure_DetailOutsideProduction(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithRepo(t, failingRepo{}, RouterOptions{})
	rec := env.get(t, "/api/chingus")
	var er errorResponse
	decode(t, rec, &er)
	if !strings.Contains(er.Error, "connection refused") {
		t.Fatalf("expected error detail, got %+v", er)
	}
}

func TestAggregateByCountry_GroupsAndEnriches(t *testing.T) {
	t.Parallel()

	rec := newTestEnv(t).get(t, "/api/chingus/aggregate-by-country")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var rows []aggregateRow
	decode(t, rec, &rows)
	if len(rows) != 3 {
		t.Fatalf("rows=%+v", rows)
	}

	us := rows[0]
	if us.CountryCode != "US" || us.Count != 2 || us.CountryName == nil || *us.CountryName != "United States" {
		t.Fatalf("us=%+v", us)
	}
	if us.Coordinates == nil || us.Coordinates.Lat != 38 {
		t.Fatalf("us coordinates=%+v", us.Coordinates)
	}
	if rows[1].CountryCode != "IN" || rows[2].CountryCode != "ZZ" {
		t.Fatalf("tie order: %s,%s", rows[1].CountryCode, rows[2].CountryCode)
	}
	zz := rows[2]
	if zz.CountryName != nil || zz.Coordinates != nil {
		t.Fatalf("zz=%+v", zz)
	}
	if !strings.Contains(rec.Body.String(), `"countryName":null`) {
		t.Fatalf("expected explicit null countryName: %s", rec.Body.String())
	}
}

func TestAggregateByCountry_Filtered(t *testing.T) {
	t.Parallel()

	var rows []aggregateRow
	decode(t, newTestEnv(t).get(t, "/api/chingus/aggregate-by-country?gender=male"), &rows)
	if len(rows) != 2 || rows[0].CountryCode != "US" || rows[0].Count != 1 {
		t.Fatalf("rows=%+v", rows)
	}
	// The only US male record carries N/A.
	if rows[0].CountryName != nil {
		t.Fatalf("expected null name, got %q", *rows[0].CountryName)
	}
}

func TestAggregateByCountry_EmptyStore(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithRepo(t, memmemberrepo.NewRepo(), RouterOptions{})
	rec := env.get(t, "/api/chingus/aggregate-by-country")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestAggregateByCountry_StoreFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithRepo(t, failingRepo{}, RouterOptions{})
	env.srv.Production = true
	rec := env.get(t, "/api/chingus/aggregate-by-country")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	var er errorResponse
	decode(t, rec, &er)
	if er.Message != "Server error during aggregation" || er.Error != "" {
		t.Fatalf("er=%+v", er)
	}
}

func TestChingus_InvalidUTF8FilterIsNotAServerError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.get(t, "/api/chingus?gender=%ff")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status=%d body=%s", rec.Code, rec.Body.String())
	}
	var res listChingusResponse
	decode(t, rec, &res)
	if res.Total != 0 || len(res.Data) != 0 {
		t.Fatalf("res=%+v", res)
	}

	rec = env.get(t, "/api/chingus/aggregate-by-country?country=%ff")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("aggregate status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestListChingus_HugePageIsEmpty(t *testing.T) {
	t.Parallel()

	rec := newTestEnv(t).get(t, "/api/chingus?page=9223372036854775807&limit=20")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var res listChingusResponse
	decode(t, rec, &res)
	if len(res.Data) != 0 || res.Total != 4 || res.Page <= 1 {
		t.Fatalf("res=%+v", res)
	}
}
