package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	memclock "github.com/chingu-voyages/demographics-api/internal/adapters/memory/clock"
	memuserrepo "github.com/chingu-voyages/demographics-api/internal/adapters/memory/userrepo"
	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/userrepo"
)

type stubIssuer struct {
	subject string
}

func (s *stubIssuer) Issue(subject, email string) (string, time.Time, error) {
	s.subject = subject
	return "tok-" + subject, time.Unix(3600, 0).UTC(), nil
}

func newTestService(t *testing.T) (*Service, *memuserrepo.Repo, *stubIssuer, *memclock.ManualClock) {
	t.Helper()
	repo := memuserrepo.NewRepo()
	iss := &stubIssuer{}
	clk := memclock.NewManualClock(time.Unix(100, 0).UTC())
	svc := NewService(repo, iss, clk)
	svc.BcryptCost = bcrypt.MinCost
	return svc, repo, iss, clk
}

func requireAppError(t *testing.T, err error, status int, code string) *Error {
	t.Helper()
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != status || ae.Code != code {
		t.Fatalf("err=%v (type=%T), want %s %d", err, err, code, status)
	}
	return ae
}

func TestService_GoogleSignIn_CreatesUser(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService(t)
	img := "https://img.example/a.png"
	u, err := svc.GoogleSignIn(context.Background(), GoogleSignInInput{
		Email:    "  Ada@Example.COM ",
		Name:     " Ada   Lovelace ",
		Image:    &img,
		GoogleID: "g-1",
	})
	if err != nil {
		t.Fatalf("GoogleSignIn err=%v", err)
	}
	if u.Email != "ada@example.com" || u.Name != "Ada Lovelace" || u.GoogleID == nil || *u.GoogleID != "g-1" {
		t.Fatalf("user=%+v", u)
	}
	if u.HasPassword() {
		t.Fatalf("google-only user has a password")
	}
	if _, err := repo.GetByEmail(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("stored user missing: %v", err)
	}
}

func TestService_GoogleSignIn_UpdatesAndLinksExisting(t *testing.T) {
	t.Parallel()

	svc, _, _, clk := newTestService(t)
	registered, err := svc.Register(context.Background(), RegisterInput{Email: "ada@example.com", Name: "Ada", Password: "Str0ngPass"})
	if err != nil {
		t.Fatalf("Register err=%v", err)
	}

	clk.Advance(time.Hour)
	u, err := svc.GoogleSignIn(context.Background(), GoogleSignInInput{Email: "ADA@example.com", Name: "Ada King", GoogleID: "g-1"})
	if err != nil {
		t.Fatalf("GoogleSignIn err=%v", err)
	}
	if u.ID != registered.ID || u.Name != "Ada King" || u.GoogleID == nil || *u.GoogleID != "g-1" {
		t.Fatalf("user=%+v", u)
	}
	if !u.HasPassword() {
		t.Fatalf("password lost on google link")
	}
	if !u.UpdatedAt.Equal(time.Unix(100, 0).UTC().Add(time.Hour)) {
		t.Fatalf("UpdatedAt=%s", u.UpdatedAt)
	}

	// Same Google ID again is fine.
	if _, err := svc.GoogleSignIn(context.Background(), GoogleSignInInput{Email: "ada@example.com", Name: "Ada", GoogleID: "g-1"}); err != nil {
		t.Fatalf("repeat GoogleSignIn err=%v", err)
	}
}

// lateRepo reports the first lookup as a miss, after another sign-in has already stored
// the account.
type lateRepo struct {
	*memuserrepo.Repo
	rival  domain.User
	missed bool
}

func (r *lateRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	if !r.missed {
		r.missed = true
		if err := r.Repo.Create(ctx, r.rival); err != nil {
			return domain.User{}, err
		}
		return domain.User{}, userrepo.ErrNotFound
	}
	return r.Repo.GetByEmail(ctx, email)
}

func TestService_GoogleSignIn_ConcurrentFirstSignIn(t *testing.T) {
	t.Parallel()

	gid := "g-1"
	rival := domain.User{
		ID:        "rival",
		Email:     "ada@example.com",
		Name:      "Ada",
		GoogleID:  &gid,
		CreatedAt: time.Unix(50, 0).UTC(),
		UpdatedAt: time.Unix(50, 0).UTC(),
	}
	repo := &lateRepo{Repo: memuserrepo.NewRepo(), rival: rival}
	svc := NewService(repo, &stubIssuer{}, memclock.NewManualClock(time.Unix(100, 0).UTC()))

	u, err := svc.GoogleSignIn(context.Background(), GoogleSignInInput{Email: "ada@example.com", Name: "Ada King", GoogleID: "g-1"})
	if err != nil {
		t.Fatalf("GoogleSignIn err=%v", err)
	}
	if u.ID != "rival" || u.Name != "Ada King" {
		t.Fatalf("user=%+v", u)
	}
	stored, err := repo.Repo.GetByEmail(context.Background(), "ada@example.com")
	if err != nil || stored.Name != "Ada King" {
		t.Fatalf("stored=%+v err=%v", stored, err)
	}
}

func TestService_GoogleSignIn_Mismatch(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	if _, err := svc.GoogleSignIn(context.Background(), GoogleSignInInput{Email: "ada@example.com", Name: "Ada", GoogleID: "g-1"}); err != nil {
		t.Fatalf("GoogleSignIn err=%v", err)
	}
	_, err := svc.GoogleSignIn(context.Background(), GoogleSignInInput{Email: "ada@example.com", Name: "Ada", GoogleID: "g-2"})
	requireAppError(t, err, 400, "GOOGLE_ID_MISMATCH")
}

func TestService_GoogleSignIn_MissingFields(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	_, err := svc.GoogleSignIn(context.Background(), GoogleSignInInput{Email: "ada@example.com"})
	ae := requireAppError(t, err, 400, "VALIDATION_ERROR")
	if ae.Details["name"] == nil || ae.Details["googleId"] == nil {
		t.Fatalf("details=%+v", ae.Details)
	}
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	u, err := svc.Register(context.Background(), RegisterInput{Email: "Grace@Example.com", Name: "Grace", Password: "Str0ngPass"})
	if err != nil {
		t.Fatalf("Register err=%v", err)
	}
	if u.Email != "grace@example.com" || !u.HasPassword() || *u.PasswordHash == "Str0ngPass" {
		t.Fatalf("user=%+v", u)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte("Str0ngPass")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestService_Register_WeakPassword(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	_, err := svc.Register(context.Background(), RegisterInput{Email: "grace@example.com", Name: "Grace", Password: "weak"})
	requireAppError(t, err, 400, "WEAK_PASSWORD")
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	in := RegisterInput{Email: "grace@example.com", Name: "Grace", Password: "Str0ngPass"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Register err=%v", err)
	}
	in.Email = " GRACE@example.com"
	_, err := svc.Register(context.Background(), in)
	requireAppError(t, err, 400, "EMAIL_TAKEN")
}

func TestService_Register_InvalidEmail(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	_, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Name: "Grace", Password: "Str0ngPass"})
	requireAppError(t, err, 400, "VALIDATION_ERROR")
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	svc, _, iss, _ := newTestService(t)
	u, err := svc.Register(context.Background(), RegisterInput{Email: "grace@example.com", Name: "Grace", Password: "Str0ngPass"})
	if err != nil {
		t.Fatalf("Register err=%v", err)
	}

	res, err := svc.Login(context.Background(), LoginInput{Email: " Grace@example.com ", Password: "Str0ngPass"})
	if err != nil {
		t.Fatalf("Login err=%v", err)
	}
	if res.Token != "tok-"+string(u.ID) || iss.subject != string(u.ID) || res.User.ID != u.ID {
		t.Fatalf("res=%+v", res)
	}
}

func TestService_Login_FailuresAreGeneric(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	if _, err := svc.Register(context.Background(), RegisterInput{Email: "grace@example.com", Name: "Grace", Password: "Str0ngPass"}); err != nil {
		t.Fatalf("Register err=%v", err)
	}
	if _, err := svc.GoogleSignIn(context.Background(), GoogleSignInInput{Email: "ada@example.com", Name: "Ada", GoogleID: "g-1"}); err != nil {
		t.Fatalf("GoogleSignIn err=%v", err)
	}

	cases := []LoginInput{
		{Email: "grace@example.com", Password: "WrongPass1"},
		{Email: "nobody@example.com", Password: "Str0ngPass"},
		{Email: "ada@example.com", Password: "Str0ngPass"},
	}
	var messages []string
	for _, in := range cases {
		_, err := svc.Login(context.Background(), in)
		ae := requireAppError(t, err, 400, "INVALID_CREDENTIALS")
		messages = append(messages, ae.Message)
	}
	for _, m := range messages {
		if m != "Invalid email or password" {
			t.Fatalf("message=%q", m)
		}
	}
}

