package common

import (
	"context"
	"os"
	"testing"
	"time"

	"lcr/pkg/config"
)

const (
	TestDatabaseName = "lcr_test"
	EnvTestMongoURI  = "TEST_MONGO_URI"
)

// Suite connects the production client stack to a disposable test database.
// Tests skip entirely when TEST_MONGO_URI is not set, so the unit suite
// stays runnable without infrastructure.
type Suite struct {
	Cfg *config.Config
}

func NewSuite(t *testing.T, serviceName string) *Suite {
	t.Helper()

	uri := os.Getenv(EnvTestMongoURI)
	if uri == "" {
		t.Skipf("%s not set, skipping integration tests", EnvTestMongoURI)
	}

	cfg := config.Load(serviceName)
	cfg.MongoURI = uri
	cfg.MongoDatabaseName = TestDatabaseName
	cfg.SetMongo()

	return &Suite{Cfg: cfg}
}

// CleanDatabase drops every collection in the test database so each test
// starts from an empty state.
func (s *Suite) CleanDatabase(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := s.Cfg.Client.Mongo.Database(s.Cfg.MongoDatabaseName)
	collections, err := db.ListCollectionNames(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}

	for _, name := range collections {
		if name == "system.indexes" {
			continue
		}
		if err := db.Collection(name).Drop(ctx); err != nil {
			t.Fatalf("failed to drop collection %s: %v", name, err)
		}
	}
}

func (s *Suite) Teardown(t *testing.T) {
	t.Helper()
	s.CleanDatabase(t)
	s.Cfg.GracefulShutdown()
}
