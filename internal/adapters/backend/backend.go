// Package backend opens the configured storage backend and exposes its adapters
// behind the outbound ports.
package backend

import (
	"context"
	"fmt"

	memidempotency "github.com/chingu-voyages/demographics-api/internal/adapters/memory/idempotency"
	memmemberrepo "github.com/chingu-voyages/demographics-api/internal/adapters/memory/memberrepo"
	memuserrepo "github.com/chingu-voyages/demographics-api/internal/adapters/memory/userrepo"
	mongoadapter "github.com/chingu-voyages/demographics-api/internal/adapters/mongo"
	mongoidempotency "github.com/chingu-voyages/demographics-api/internal/adapters/mongo/idempotency"
	mongomemberrepo "github.com/chingu-voyages/demographics-api/internal/adapters/mongo/memberrepo"
	mongouserrepo "github.com/chingu-voyages/demographics-api/internal/adapters/mongo/userrepo"
	postgres "github.com/chingu-voyages/demographics-api/internal/adapters/postgres"
	pgidempotency "github.com/chingu-voyages/demographics-api/internal/adapters/postgres/idempotency"
	pgmemberrepo "github.com/chingu-voyages/demographics-api/internal/adapters/postgres/memberrepo"
	pguserrepo "github.com/chingu-voyages/demographics-api/internal/adapters/postgres/userrepo"
	"github.com/chingu-voyages/demographics-api/internal/platform/config"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/idempotency"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/userrepo"
)

const (
	Memory   = "memory"
	Postgres = "postgres"
	Mongo    = "mongo"
)

// Stores is one opened backend.
type Stores struct {
	Name    string
	Members memberrepo.Repository
	Users   userrepo.Repository
	Idem    idempotency.Store

	// Durable is false for the in-process backend, whose data is lost on exit.
	Durable bool

	close func(context.Context)
}

// Close releases connections held by the backend.
func (s *Stores) Close(ctx context.Context) {
	if s != nil && s.close != nil {
		s.close(ctx)
	}
}

// Open connects to the backend named by cfg.Backend. Postgres is migrated and Mongo
// indexes are ensured before Open returns.
func Open(ctx context.Context, cfg config.StorageConfig) (*Stores, error) {
	switch cfg.Backend {
	case Postgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresURL, cfg.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Stores{
			Name:    Postgres,
			Members: pgmemberrepo.NewRepo(pool),
			Users:   pguserrepo.NewRepo(pool),
			Idem:    pgidempotency.NewStore(pool),
			Durable: true,
			close:   func(context.Context) { pool.Close() },
		}, nil

	case Mongo:
		client, err := mongoadapter.Connect(ctx, cfg.MongoURI, cfg.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongoadapter.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &Stores{
			Name:    Mongo,
			Members: mongomemberrepo.NewRepo(db),
			Users:   mongouserrepo.NewRepo(db),
			Idem:    mongoidempotency.NewStore(db),
			Durable: true,
			close:   func(ctx context.Context) { _ = client.Disconnect(ctx) },
		}, nil

	case Memory, "":
		return &Stores{
			Name:    Memory,
			Members: memmemberrepo.NewRepo(),
			Users:   memuserrepo.NewRepo(),
			Idem:    memidempotency.NewStore(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
