// Package testutil opens a throwaway MongoDB database for adapter tests.
package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	mongoadapter "github.com/chingu-voyages/demographics-api/internal/adapters/mongo"
)

// EnvMongoURI names the variable holding the test server URI. Tests that need MongoDB
// are skipped when it is unset.
const EnvMongoURI = "TEST_MONGO_URI"

// OpenDatabase returns a fresh, indexed database that is dropped when the test ends.
func OpenDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv(EnvMongoURI)
	if uri == "" {
		t.Skipf("%s not set; skipping mongo test", EnvMongoURI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongoadapter.Connect(ctx, uri, 10*time.Second)
	if err != nil {
		t.Fatalf("open mongo: %v", err)
	}
	name := "demographics_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	db := client.Database(name)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	if err := mongoadapter.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return db
}
