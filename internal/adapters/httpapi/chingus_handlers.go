package httpapi

import (
	"net/http"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/chingu-voyages/demographics-api/internal/app/chingus"
	"github.com/chingu-voyages/demographics-api/internal/platform/logging"
)

// ListChingus handles GET /api/chingus.
func (s *Server) ListChingus(w http.ResponseWriter, r *http.Request) {
	q := bindChingusQuery(r.URL.Query())

	res, err := s.Chingus.List(r.Context(), q.Filter(), chingus.ParseSort(q.Sort), q.Paging())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("list chingus failed")
		s.writeInternalError(w, r, "Server error", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponseFromResult(res))
}

// AggregateByCountry handles GET /api/chingus/aggregate-by-country.
func (s *Server) AggregateByCountry(w http.ResponseWriter, r *http.Request) {
	q := bindChingusQuery(r.URL.Query())

	rows, err := s.Chingus.AggregateByCountry(r.Context(), q.Filter())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("aggregate by country failed")
		s.writeInternalError(w, r, "Server error during aggregation", err)
		return
	}
	out := make([]countryCountDTO, 0, len(rows))
	for _, c := range rows {
		out = append(out, countryCountFromResult(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// bindChingusQuery never fails: malformed values fall back to their raw text and are
// resolved to defaults by the chingus package.
func bindChingusQuery(values url.Values) chingus.Query {
	q := chingus.Query{
		CountryCode:     queryString(values, "countryCode"),
		Gender:          queryString(values, "gender"),
		RoleType:        queryString(values, "roleType"),
		Role:            queryString(values, "role"),
		SoloProjectTier: queryString(values, "soloProjectTier"),
		VoyageTier:      queryString(values, "voyageTier"),
		Voyage:          queryString(values, "voyage"),
		YearJoined:      queryString(values, "yearJoined"),
		Page:            queryString(values, "page"),
		Limit:           queryString(values, "limit"),
		Sort:            queryString(values, "sort"),
	}

	// country may repeat: ?country=India&country=Peru.
	var countries *[]string
	if err := runtime.BindQueryParameter("form", true, false, "country", values, &countries); err != nil {
		raw := values["country"]
		countries = &raw
	}
	if countries != nil {
		q.Country = append([]string{}, (*countries)...)
	}
	return q
}

// queryString binds a single-valued parameter. Repeated values keep the first one.
func queryString(values url.Values, name string) string {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, values, &v); err != nil {
		return values.Get(name)
	}
	if v == nil {
		return ""
	}
	return *v
}
