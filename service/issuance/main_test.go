package issuance

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/util"
)

var (
	queries *db.Queries
	engine  *Engine
)

func TestMain(m *testing.M) {
	// Omit test if this is CI environment
	if strings.TrimSpace(os.Getenv("CI")) != "" {
		util.LOGGER.Warn("CI environment, skip integration test")
		return
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	// Dedicated throwaway database per run
	dbName := fmt.Sprintf("issuance_test_%s", util.RandomString(8))

	ctx := context.Background()
	queries = db.NewQueries()
	if err := queries.ConnectDB(ctx, uri, dbName); err != nil {
		util.LOGGER.Warn("MongoDB unreachable, skip integration test", "error", err)
		return
	}
	if err := queries.EnsureIndexes(ctx); err != nil {
		util.LOGGER.Error("failed to create indexes for test", "error", err)
		os.Exit(1)
	}

	engine = NewEngine(queries, "http://localhost:8080")

	code := m.Run()

	if err := queries.DB.Drop(ctx); err != nil {
		util.LOGGER.Warn("failed to drop test database", "db", dbName, "error", err)
	}
	queries.Close(ctx)

	os.Exit(code)
}
