package testing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vvka-141/whetl/internal/db"
	"github.com/vvka-141/whetl/internal/db/manager"
	"github.com/vvka-141/whetl/internal/logging"
	"github.com/vvka-141/whetl/internal/testinfra"
	"github.com/vvka-141/whetl/pkg/whetl"
)

// TestConnEnv overrides the container with an existing database.
const TestConnEnv = "WHETL_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		container, err := testinfra.StartPostgres(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: WHETL_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnv); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnv, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// NewTestManager returns a connected manager for the test database using the
// postgres dialect. The connection is closed when the test ends.
func NewTestManager(t *testing.T, opts ...manager.Option) *manager.Manager {
	t.Helper()

	connStr := RequireDatabase(t)
	cfg, err := db.ParseConnectionString(connStr)
	if err != nil {
		t.Fatalf("parse %s: %v", connStr, err)
	}
	cfg.Dialect = whetl.DialectPostgres

	mgr := manager.New(db.NewStandardConnector(cfg, logging.NewNullLogger()), logging.NewNullLogger(), opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := mgr.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { mgr.Close(context.Background()) }) //nolint:errcheck
	return mgr
}

// CreateSchema creates a schema unique to the test and drops it afterwards.
func CreateSchema(t *testing.T, exec whetl.Executor) string {
	t.Helper()

	name := "t_" + strings.ToLower(strings.NewReplacer("/", "_", " ", "_", "-", "_").Replace(t.Name()))
	if len(name) > 50 {
		name = name[:50]
	}
	name = fmt.Sprintf("%s_%d", name, time.Now().UnixNano()%1_000_000)

	ctx := context.Background()
	if _, err := exec.Exec(ctx, "CREATE SCHEMA "+name, nil); err != nil {
		t.Fatalf("create schema %s: %v", name, err)
	}
	t.Cleanup(func() {
		exec.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+name+" CASCADE", nil) //nolint:errcheck
	})
	return name
}

// CreateLedgerTable provisions schema.imports<suffix> with the columns the ledger expects.
func CreateLedgerTable(t *testing.T, exec whetl.Executor, schema, suffix string) {
	t.Helper()

	ddl := fmt.Sprintf(`CREATE TABLE %s.imports%s (
		id            BIGSERIAL PRIMARY KEY,
		file_name     TEXT NOT NULL,
		source        TEXT NOT NULL,
		file_date     DATE,
		status        TEXT NOT NULL,
		file_path     TEXT,
		time_imported TIMESTAMP,
		created_at    TIMESTAMP NOT NULL DEFAULT now(),
		updated_at    TIMESTAMP NOT NULL DEFAULT now()
	)`, schema, suffix)
	if _, err := exec.Exec(context.Background(), ddl, nil); err != nil {
		t.Fatalf("create ledger table: %v", err)
	}
}
