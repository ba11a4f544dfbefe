package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/chingu-voyages/demographics-api/internal/platform/auth/jwttoken"
	"github.com/chingu-voyages/demographics-api/internal/platform/config"
	"github.com/chingu-voyages/demographics-api/internal/platform/logging"
)

// Dev-only token minter for exercising auth.require_token locally.
//
//	devtoken <subject> [email]   prints one token signed with auth.jwt_secret
//	devtoken                     serves GET /token?sub=...&email=... on $PORT
//
// Never deploy this: anyone who can reach it can mint valid tokens.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console"})

	if cfg.Server.IsProduction() {
		logging.Fatal().Msg("devtoken refuses to run with server.environment=production")
	}

	tokens := jwttoken.New(jwttoken.Config{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TokenTTL,
	})

	if len(os.Args) > 1 {
		email := ""
		if len(os.Args) > 2 {
			email = os.Args[2]
		}
		token, _, err := tokens.Issue(os.Args[1], email)
		if err != nil {
			logging.Fatal().Err(err).Msg("mint token")
		}
		fmt.Println(token)
		return
	}

	port := getenv("PORT", "5556")
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Mint a token:
	//   GET /token?sub=user-123&email=ada@example.com
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		sub := strings.TrimSpace(r.URL.Query().Get("sub"))
		if sub == "" {
			http.Error(w, "missing sub", http.StatusBadRequest)
			return
		}

		token, exp, err := tokens.Issue(sub, strings.TrimSpace(r.URL.Query().Get("email")))
		if err != nil {
			http.Error(w, "failed to mint token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": token,
			"sub":   sub,
			"iss":   cfg.Auth.Issuer,
			"exp":   exp.Unix(),
		})
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logging.Info().Str("port", port).Str("issuer", cfg.Auth.Issuer).Dur("ttl", cfg.Auth.TokenTTL).Msg("devtoken listening")
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal().Err(err).Msg("listen")
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
