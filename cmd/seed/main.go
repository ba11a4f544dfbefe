package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/chingu-voyages/demographics-api/internal/adapters/backend"
	"github.com/chingu-voyages/demographics-api/internal/app/importer"
	"github.com/chingu-voyages/demographics-api/internal/platform/config"
	"github.com/chingu-voyages/demographics-api/internal/platform/logging"
)

// seed replaces the member collection with the export at seed.path (or the first
// argument). It exits non-zero on any failure.
func main() {
	cfg, err := config.LoadWithoutAuth()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	path := cfg.Seed.Path
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	if cfg.Storage.Backend == backend.Memory {
		logging.Warn().Msg("storage.backend is memory; the import will be discarded on exit")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stores, err := backend.Open(ctx, cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("store connection failed")
	}
	defer stores.Close(context.Background())
	logging.Info().Str("backend", stores.Name).Str("path", path).Msg("importing")

	rep, err := importer.NewService(stores.Members).ImportFile(ctx, path)
	if errors.Is(err, importer.ErrNoValidEntries) {
		logging.Warn().Int("read", rep.Read).Msg("no valid entries; store left unchanged")
		return
	}
	if err != nil {
		stores.Close(context.Background())
		logging.Fatal().Err(err).Msg("import failed")
	}
	logging.Info().
		Int("read", rep.Read).
		Int("inserted", rep.Inserted).
		Int("rejected", len(rep.Rejected)).
		Msg("import complete")
}
