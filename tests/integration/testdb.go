//go:build integration

// Package integration runs the shop against PostgreSQL in a testcontainer.
package integration

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/greenshop/backend/internal/infrastructure/config"
	"github.com/greenshop/backend/internal/infrastructure/migration"
	"github.com/greenshop/backend/internal/infrastructure/persistence"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// one migrated container per test binary
var shared struct {
	sync.Mutex
	container testcontainers.Container
	cfg       *config.DatabaseConfig
}

func runPostgres(t *testing.T, dbName string) (testcontainers.Container, *config.DatabaseConfig) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()
	c, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername("shop"),
		tcpostgres.WithPassword("shop"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres")

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return c, &config.DatabaseConfig{
		Driver:       persistence.DriverPostgres,
		Host:         host,
		Port:         port.Int(),
		User:         "shop",
		Password:     "shop",
		DBName:       dbName,
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}
}

// shopDB connects to the shared container, migrating it on first use, and
// empties the shop tables. TEST_DB_DEBUG=1 logs every statement.
func shopDB(t *testing.T) *gorm.DB {
	t.Helper()
	shared.Lock()
	defer shared.Unlock()

	if shared.container == nil {
		shared.container, shared.cfg = runPostgres(t, "greenshop_test")
		pool, err := sql.Open("postgres", shared.cfg.DSN())
		require.NoError(t, err)
		m, err := migration.New(pool, migration.Source(""), nil)
		require.NoError(t, err)
		require.NoError(t, m.Up())
		require.NoError(t, m.Close())
	}

	level := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = logger.Info
	}
	db, err := persistence.NewDatabaseWithCustomLogger(shared.cfg, logger.Default.LogMode(level))
	require.NoError(t, err, "connect")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.DB.Exec("TRUNCATE TABLE products, orders, settings").Error)
	return db.DB
}

// freshPostgres starts an unmigrated container owned by one test
func freshPostgres(t *testing.T) string {
	t.Helper()
	c, cfg := runPostgres(t, "greenshop_migrate")
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})
	return cfg.DSN()
}

// stopShared is called from TestMain
func stopShared() {
	shared.Lock()
	defer shared.Unlock()
	if shared.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = shared.container.Terminate(ctx)
	shared.container, shared.cfg = nil, nil
}
