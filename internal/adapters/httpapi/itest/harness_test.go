package itest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chingu-voyages/demographics-api/internal/adapters/httpapi"
	memclock "github.com/chingu-voyages/demographics-api/internal/adapters/memory/clock"
	memidempotency "github.com/chingu-voyages/demographics-api/internal/adapters/memory/idempotency"
	memmemberrepo "github.com/chingu-voyages/demographics-api/internal/adapters/memory/memberrepo"
	memuserrepo "github.com/chingu-voyages/demographics-api/internal/adapters/memory/userrepo"
	mongoidempotency "github.com/chingu-voyages/demographics-api/internal/adapters/mongo/idempotency"
	mongomemberrepo "github.com/chingu-voyages/demographics-api/internal/adapters/mongo/memberrepo"
	mongo_testutil "github.com/chingu-voyages/demographics-api/internal/adapters/mongo/testutil"
	mongouserrepo "github.com/chingu-voyages/demographics-api/internal/adapters/mongo/userrepo"
	pgidempotency "github.com/chingu-voyages/demographics-api/internal/adapters/postgres/idempotency"
	pgmemberrepo "github.com/chingu-voyages/demographics-api/internal/adapters/postgres/memberrepo"
	postgres_testutil "github.com/chingu-voyages/demographics-api/internal/adapters/postgres/testutil"
	pguserrepo "github.com/chingu-voyages/demographics-api/internal/adapters/postgres/userrepo"
	"github.com/chingu-voyages/demographics-api/internal/app/accounts"
	"github.com/chingu-voyages/demographics-api/internal/app/chingus"
	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/platform/auth/jwttoken"
	"github.com/chingu-voyages/demographics-api/internal/platform/geo"
	idempotencyport "github.com/chingu-voyages/demographics-api/internal/ports/out/idempotency"
	memberrepoport "github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
	userrepoport "github.com/chingu-voyages/demographics-api/internal/ports/out/userrepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
	backendMongo    backend = "mongo"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "mongo":
		return []backend{backendMongo}
	case "all":
		return []backend{backendMemory, backendPostgres, backendMongo}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|mongo|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
}

// newTestServer starts the full router over the chosen backend with members loaded.
func newTestServer(t *testing.T, b backend, members []domain.Member, requireToken bool) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	var (
		memberRepo memberrepoport.Repository
		userRepo   userrepoport.Repository
		idemStore  idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		memberRepo = pgmemberrepo.NewRepo(pool)
		userRepo = pguserrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool)
	case backendMongo:
		db := mongo_testutil.OpenDatabase(t)
		memberRepo = mongomemberrepo.NewRepo(db)
		userRepo = mongouserrepo.NewRepo(db)
		idemStore = mongoidempotency.NewStore(db)
	case backendMemory:
		memberRepo = memmemberrepo.NewRepo()
		userRepo = memuserrepo.NewRepo()
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	if _, err := memberRepo.ReplaceAll(context.Background(), members); err != nil {
		t.Fatalf("load members: %v", err)
	}

	coords, err := geo.Bundled()
	if err != nil {
		t.Fatalf("geo.Bundled: %v", err)
	}
	tokens := jwttoken.NewWithClock(jwttoken.Config{
		Secret: []byte("itest-secret-itest-secret-itest-secret"),
		Issuer: "itest-issuer",
		TTL:    time.Hour,
	}, clk)
	accountsSvc := accounts.NewService(userRepo, tokens, clk)
	accountsSvc.BcryptCost = bcrypt.MinCost

	api := httpapi.NewServer(chingus.NewService(memberRepo, coords), accountsSvc, idemStore, clk)
	api.Production = true

	opts := httpapi.RouterOptions{}
	if requireToken {
		opts.AuthMiddleware = httpapi.NewAuthMiddleware(tokens)
	}
	srv := httptest.NewServer(httpapi.NewRouterWithOptions(api, opts))
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, headers map[string]string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Code != wantCode || got.Success {
		t.Fatalf("code=%q want=%q body=%s", got.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}

// uniqueEmail keeps account tests independent on shared databases.
func uniqueEmail(prefix string) string {
	return prefix + "+" + uuid.NewString()[:8] + "@example.com"
}

// itestMembers uses uuid IDs so the Postgres uuid column accepts them.
func itestMembers() []domain.Member {
	mk := func(ts time.Time, g domain.Gender, code, name, voyage string) domain.Member {
		m := domain.NewMember(domain.MemberID(uuid.NewString()), ts, g)
		m.CountryCode = code
		m.CountryName = name
		m.RoleType = "Web Developer"
		m.VoyageRole = "Software Developer"
		m.SoloProjectTier = "Tier 2 - Intermediate"
		m.VoyageTier = "Tier 2"
		m.Voyage = voyage
		return m
	}
	return []domain.Member{
		mk(time.Date(2021, 4, 2, 9, 0, 0, 0, time.UTC), domain.GenderMale, "US", "United States", "V40"),
		mk(time.Date(2022, 4, 2, 9, 0, 0, 0, time.UTC), domain.GenderFemale, "US", domain.NotAvailable, "V41"),
		mk(time.Date(2023, 4, 2, 9, 0, 0, 0, time.UTC), domain.GenderFemale, "IN", "India", "V42"),
		mk(time.Date(2023, 5, 2, 9, 0, 0, 0, time.UTC), domain.GenderOther, "GB", "United Kingdom", "V42"),
		mk(time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC), domain.GenderMale, "ZZ", domain.NotAvailable, "V43"),
	}
}
