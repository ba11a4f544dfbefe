package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/chingu-voyages/demographics-api/internal/app/accounts"
	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/platform/logging"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/idempotency"
)

const (
	maxBodyBytes = 1 << 20

	registerRoute = "/api/auth/register"
)

// GoogleSignIn handles POST /api/auth/google.
func (s *Server) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var in accounts.GoogleSignInInput
	if !decodeBody(w, r, &in) {
		return
	}
	u, err := s.Accounts.GoogleSignIn(r.Context(), in)
	if err != nil {
		s.writeAccountsError(w, r, "Authentication failed", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Success: true, User: userFromDomain(u)})
}

// Register handles POST /api/auth/register.
//
// With an Idempotency-Key header, a retry with the same body replays the first
// successful response and a retry with a different body is rejected with 409.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var in accounts.RegisterInput
	if !decodeBody(w, r, &in) {
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	var respFP idempotency.Fingerprint
	useIdem := s.Idem != nil && key != ""
	if useIdem {
		bodyHash, err := s.registerFingerprint(in)
		if err != nil {
			s.writeInternalError(w, r, "Registration failed", err)
			return
		}
		metaFP := idempotency.Fingerprint{
			Key:    idempotency.Key(key),
			Method: http.MethodPost,
			Route:  registerRoute,
		}
		meta, ok, err := s.Idem.Get(r.Context(), metaFP)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("idempotency lookup failed")
			s.writeInternalError(w, r, "Registration failed", err)
			return
		}
		if ok && string(meta.Body) != bodyHash {
			writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
			return
		}
		if !ok {
			_ = s.Idem.Put(r.Context(), metaFP, idempotency.Record{
				ContentType: "text/plain",
				Body:        []byte(bodyHash),
				CreatedAt:   s.Clock.Now(),
			})
		}

		respFP = metaFP
		respFP.BodyHash = bodyHash
		if rec, ok, err := s.Idem.Get(r.Context(), respFP); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("idempotency lookup failed")
			s.writeInternalError(w, r, "Registration failed", err)
			return
		} else if ok && rec.StatusCode == http.StatusCreated && strings.HasPrefix(rec.ContentType, "application/json") {
			w.Header().Set("Idempotent-Replayed", "true")
			writeRawJSON(w, rec.StatusCode, rec.Body)
			return
		}
	}

	u, err := s.Accounts.Register(r.Context(), in)
	if err != nil {
		s.writeAccountsError(w, r, "Registration failed", err)
		return
	}

	b, err := json.Marshal(userResponse{Success: true, User: userFromDomain(u)})
	if err != nil {
		s.writeInternalError(w, r, "Registration failed", err)
		return
	}
	if useIdem {
		if err := s.Idem.Put(r.Context(), respFP, idempotency.Record{
			StatusCode:  http.StatusCreated,
			ContentType: "application/json",
			Body:        b,
			CreatedAt:   s.Clock.Now(),
		}); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("store idempotent response failed")
		}
	}
	writeRawJSON(w, http.StatusCreated, b)
}

// Login handles POST /api/auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var in accounts.LoginInput
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := s.Accounts.Login(r.Context(), in)
	if err != nil {
		s.writeAccountsError(w, r, "Login failed", err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Success:   true,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.UTC(),
		User:      userFromDomain(res.User),
	})
}

// writeAccountsError maps caller mistakes to their status and everything else to a
// 500 carrying fallback.
func (s *Server) writeAccountsError(w http.ResponseWriter, r *http.Request, fallback string, err error) {
	var ae *accounts.Error
	if errors.As(err, &ae) && ae.Status < http.StatusInternalServerError {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("auth request failed")
	s.writeInternalError(w, r, fallback, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Request body too large or unreadable", nil)
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Request body must be a JSON object", nil)
		return false
	}
	return true
}

// registerFingerprint is an HMAC of the normalized fields, so retries that differ only
// in email case or surrounding whitespace count as the same request.
func (s *Server) registerFingerprint(in accounts.RegisterInput) (string, error) {
	b, err := json.Marshal(struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}{
		Email:    domain.NormalizeEmail(in.Email),
		Name:     domain.NormalizeHumanName(in.Name),
		Password: in.Password,
	})
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, s.FingerprintKey)
	_, _ = mac.Write(b)
	return hex.EncodeToString(mac.Sum(nil)), nil
}
