// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-petr/pet-account/db/migration"
	"github.com/go-petr/pet-account/pkg/dbpkg"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Postgres driver registered for dbpkg.Setup.
	_ "github.com/lib/pq"
)

// SetupDB starts a disposable Postgres container, migrates it and returns a
// connection. The container is terminated when the test finishes.
func SetupDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pet_account"),
		tcpostgres.WithUsername("root"),
		tcpostgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("tcpostgres.Run() returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("container.Terminate() returned error: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("container.ConnectionString() returned error: %v", err)
	}

	db, err := dbpkg.Setup("postgres", dsn)
	if err != nil {
		t.Fatalf("dbpkg.Setup(%q) returned error: %v", dsn, err)
	}

	t.Cleanup(func() { _ = db.Close() })

	if err := migration.Up(db, zerolog.Nop()); err != nil {
		t.Fatalf("migration.Up() returned error: %v", err)
	}

	return db
}

// Flush flushes all db tables without droping.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	const query = `TRUNCATE TABLE transactions, accounts, account_users RESTART IDENTITY CASCADE`

	if _, err := db.Exec(query); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}
