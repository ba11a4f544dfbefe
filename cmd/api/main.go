package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/chingu-voyages/demographics-api/internal/adapters/backend"
	"github.com/chingu-voyages/demographics-api/internal/adapters/httpapi"
	"github.com/chingu-voyages/demographics-api/internal/app/accounts"
	"github.com/chingu-voyages/demographics-api/internal/app/chingus"
	"github.com/chingu-voyages/demographics-api/internal/app/importer"
	"github.com/chingu-voyages/demographics-api/internal/platform/auth/jwttoken"
	platformclock "github.com/chingu-voyages/demographics-api/internal/platform/clock"
	"github.com/chingu-voyages/demographics-api/internal/platform/config"
	"github.com/chingu-voyages/demographics-api/internal/platform/geo"
	"github.com/chingu-voyages/demographics-api/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	clk := platformclock.NewSystemClock()

	coords, err := geo.Bundled()
	if err != nil {
		logging.Fatal().Err(err).Msg("load coordinate table")
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), cfg.Storage.ConnectTimeout+5*time.Second)
	stores, err := backend.Open(connectCtx, cfg.Storage)
	cancelConnect()
	if err != nil {
		logging.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("store connection failed")
	}
	logging.Info().Str("backend", stores.Name).Msg("store connected")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		stores.Close(ctx)
	}()

	// The in-process backend starts empty, so load the export when one is configured.
	if !stores.Durable && cfg.Seed.Path != "" {
		if _, statErr := os.Stat(cfg.Seed.Path); statErr == nil {
			rep, err := importer.NewService(stores.Members).ImportFile(context.Background(), cfg.Seed.Path)
			if err != nil {
				logging.Warn().Err(err).Str("path", cfg.Seed.Path).Msg("seed import failed")
			} else {
				logging.Info().Int("inserted", rep.Inserted).Int("rejected", len(rep.Rejected)).Msg("seeded in-memory store")
			}
		}
	}

	tokens := jwttoken.NewWithClock(jwttoken.Config{
		Secret:    []byte(cfg.Auth.JWTSecret),
		Issuer:    cfg.Auth.Issuer,
		TTL:       cfg.Auth.TokenTTL,
		ClockSkew: 30 * time.Second,
	}, clk)
	accountsSvc := accounts.NewService(stores.Users, tokens, clk)
	accountsSvc.BcryptCost = cfg.Auth.BcryptCost

	api := httpapi.NewServer(chingus.NewService(stores.Members, coords), accountsSvc, stores.Idem, clk)
	api.Production = cfg.Server.IsProduction()
	// Durable idempotency stores need a key that survives restarts.
	api.FingerprintKey = []byte(cfg.Auth.JWTSecret)

	opts := httpapi.RouterOptions{CORSOrigins: cfg.CORS.Origins}
	if cfg.Auth.RequireToken {
		opts.AuthMiddleware = httpapi.NewAuthMiddleware(tokens)
	}
	if !cfg.RateLimit.Disabled {
		opts.GlobalLimit = httpapi.RateLimit{Requests: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window}
		opts.AuthLimit = httpapi.RateLimit{Requests: cfg.RateLimit.AuthRequests, Window: cfg.RateLimit.AuthWindow}
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           httpapi.NewRouterWithOptions(api, opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Info().
			Str("addr", srv.Addr).
			Str("environment", cfg.Server.Environment).
			Bool("require_token", cfg.Auth.RequireToken).
			Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("shutdown")
	}
}
