package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linentrack/internal/config"
)

func TestNewConnection_SQLite(t *testing.T) {
	ctx := context.Background()

	db, err := NewConnection(ctx, config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, EnsureSchema(ctx, db))
	// Idempotent.
	require.NoError(t, EnsureSchema(ctx, db))

	_, err = db.ExecContext(ctx, `INSERT INTO production_orders (id, client_name, product_name) VALUES ('a', 'ABC물산', '린넨')`)
	require.NoError(t, err)

	var status string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT status FROM production_orders WHERE id = 'a'`).Scan(&status))
	assert.Equal(t, "RECEIPT_RECORDED", status)
}

func TestNewConnection_UnsupportedDriver(t *testing.T) {
	_, err := NewConnection(context.Background(), config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestMySQLDSN(t *testing.T) {
	dsn := mysqlDSN(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     3306,
		User:     "linentrack",
		Password: "secret",
		Name:     "orders",
	})

	assert.Contains(t, dsn, "linentrack:secret@tcp(db.internal:3306)/orders")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.Contains(t, dsn, "clientFoundRows=true")
}

func TestFoundRowsDSN(t *testing.T) {
	dsn, err := FoundRowsDSN("linentrack:secret@tcp(db.internal:3306)/orders?parseTime=true")
	require.NoError(t, err)

	assert.Contains(t, dsn, "linentrack:secret@tcp(db.internal:3306)/orders")
	assert.Contains(t, dsn, "clientFoundRows=true")
	assert.Contains(t, dsn, "parseTime=true")

	_, err = FoundRowsDSN("not a dsn")
	assert.Error(t, err)
}
