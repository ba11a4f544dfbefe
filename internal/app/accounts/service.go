package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/platform/validation"
	clockport "github.com/chingu-voyages/demographics-api/internal/ports/out/clock"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/userrepo"
)

// TokenIssuer signs login tokens.
type TokenIssuer interface {
	Issue(subject, email string) (string, time.Time, error)
}

type Service struct {
	users  userrepo.Repository
	tokens TokenIssuer
	clk    clockport.Clock

	newUserID func() domain.UserID

	// Policy is enforced on registration.
	Policy PasswordPolicy
	// BcryptCost is the hashing cost for new passwords.
	BcryptCost int
}

func NewService(users userrepo.Repository, tokens TokenIssuer, clk clockport.Clock) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		clk:    clk,
		newUserID: func() domain.UserID {
			return domain.UserID(uuid.NewString())
		},
		Policy:     DefaultPasswordPolicy(),
		BcryptCost: bcrypt.DefaultCost,
	}
}

// GoogleSignIn records a Google sign-in. An unknown email creates an account; a known
// one gets its name and image refreshed and is linked to the Google ID if it was not
// linked already. A stored Google ID that differs from the presented one is rejected.
func (s *Service) GoogleSignIn(ctx context.Context, in GoogleSignInInput) (domain.User, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	in.Name = domain.NormalizeHumanName(in.Name)
	in.GoogleID = strings.TrimSpace(in.GoogleID)
	if err := validateInput(in); err != nil {
		return domain.User{}, err
	}

	now := s.clk.Now()
	u, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, userrepo.ErrNotFound) {
		gid := in.GoogleID
		u = domain.User{
			ID:        s.newUserID(),
			Email:     in.Email,
			Name:      in.Name,
			Image:     cloneStringPtr(in.Image),
			GoogleID:  &gid,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = s.users.Create(ctx, u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, userrepo.ErrEmailTaken) {
			return domain.User{}, err
		}
		// A concurrent sign-in created the account first; update that one instead.
		u, err = s.users.GetByEmail(ctx, in.Email)
	}
	if err != nil {
		return domain.User{}, err
	}

	if u.GoogleID != nil && *u.GoogleID != "" && *u.GoogleID != in.GoogleID {
		return domain.User{}, &Error{
			Status:  400,
			Code:    "GOOGLE_ID_MISMATCH",
			Message: "Google account does not match the account registered for this email",
		}
	}
	u.Name = in.Name
	u.Image = cloneStringPtr(in.Image)
	if u.GoogleID == nil || *u.GoogleID == "" {
		gid := in.GoogleID
		u.GoogleID = &gid
	}
	u.UpdatedAt = now
	if err := s.users.Update(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Register creates a password account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	in.Name = domain.NormalizeHumanName(in.Name)
	if err := validateInput(in); err != nil {
		return domain.User{}, err
	}
	if problems := s.Policy.Check(in.Password); len(problems) > 0 {
		return domain.User{}, &Error{
			Status:  400,
			Code:    "WEAK_PASSWORD",
			Message: "Password " + strings.Join(problems, ", "),
			Details: map[string]any{"password": problems},
		}
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return domain.User{}, emailTaken()
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	h := string(hash)
	now := s.clk.Now()
	u := domain.User{
		ID:           s.newUserID(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: &h,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrEmailTaken) {
			return domain.User{}, emailTaken()
		}
		return domain.User{}, err
	}
	return u, nil
}

// Login checks a password and issues a token whose subject is the user ID.
//
// Unknown emails, Google-only accounts and wrong passwords all fail the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return LoginResult{}, err
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return LoginResult{}, invalidCredentials()
		}
		return LoginResult{}, err
	}
	if !u.HasPassword() {
		return LoginResult{}, invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return LoginResult{}, invalidCredentials()
		}
		return LoginResult{}, fmt.Errorf("compare password: %w", err)
	}

	token, exp, err := s.tokens.Issue(string(u.ID), u.Email)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func validateInput(in any) error {
	errs := validation.Struct(in)
	if len(errs) == 0 {
		return nil
	}
	return &Error{
		Status:  400,
		Code:    "VALIDATION_ERROR",
		Message: "Missing or invalid fields: " + strings.Join(validation.Fields(errs), ", "),
		Details: validation.Details(errs),
	}
}

func emailTaken() *Error {
	return &Error{
		Status:  400,
		Code:    "EMAIL_TAKEN",
		Message: "An account with this email already exists",
	}
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
