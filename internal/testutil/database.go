package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"linentrack/internal/infrastructure/database"
)

// SetupTestDB opens the test order store. When TEST_MYSQL_DSN is set the
// tests run against that MySQL database, otherwise against an in-memory
// SQLite database private to the test.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if dsn := os.Getenv("TEST_MYSQL_DSN"); dsn != "" {
		dsn, err := database.FoundRowsDSN(dsn)
		if err != nil {
			t.Fatalf("invalid TEST_MYSQL_DSN: %v", err)
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			t.Fatalf("failed to open test database: %v", err)
		}
		if err := db.Ping(); err != nil {
			t.Skipf("test database not available: %v", err)
		}
		return db
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	return db
}

// SetupTestTables creates the production_orders table.
func SetupTestTables(t *testing.T, db *sql.DB) {
	t.Helper()

	if err := database.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
}

// CleanupTestDB empties the tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	if _, err := db.Exec("DELETE FROM production_orders"); err != nil {
		t.Logf("failed to clean table production_orders: %v", err)
	}

	db.Close()
}
