package notify

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/util"
)

// Set when MongoDB is reachable; the fan-out tests skip otherwise so the
// pure message tests still run everywhere.
var queries *db.Queries

func TestMain(m *testing.M) {
	ctx := context.Background()
	dbName := fmt.Sprintf("notify_test_%s", util.RandomString(8))

	if strings.TrimSpace(os.Getenv("CI")) == "" {
		uri := os.Getenv("MONGO_URI")
		if uri == "" {
			uri = "mongodb://localhost:27017"
		}

		candidate := db.NewQueries()
		if err := candidate.ConnectDB(ctx, uri, dbName); err != nil {
			util.LOGGER.Warn("MongoDB unreachable, skip fan-out tests", "error", err)
		} else {
			queries = candidate
		}
	}

	code := m.Run()

	if queries != nil {
		if err := queries.DB.Drop(ctx); err != nil {
			util.LOGGER.Warn("failed to drop test database", "db", dbName, "error", err)
		}
		queries.Close(ctx)
	}

	os.Exit(code)
}

func requireMongo(t *testing.T) {
	t.Helper()
	if queries == nil {
		t.Skip("MongoDB unreachable, skip fan-out test")
	}
}
