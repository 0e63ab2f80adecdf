package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"linentrack/internal/config"
	apperrors "linentrack/internal/errors"
)

// NewConnection opens the order store. MySQL backs the hosted deployment;
// the embedded SQLite driver serves local runs.
func NewConnection(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	driver, dsn := cfg.Driver, cfg.DSN
	switch driver {
	case config.DriverMySQL:
		if dsn == "" {
			dsn = mysqlDSN(cfg)
		} else {
			var err error
			if dsn, err = FoundRowsDSN(dsn); err != nil {
				return nil, err
			}
		}
	case config.DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if driver == config.DriverSQLite {
		// An in-memory database lives as long as its one connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, apperrors.NewConnectivityError("order store unreachable", err)
	}

	return db, nil
}

func mysqlDSN(cfg config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.ClientFoundRows = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// FoundRowsDSN turns on clientFoundRows in a MySQL DSN. Updates then report
// matched rows, so rewriting a record with its current values still counts
// as found.
func FoundRowsDSN(dsn string) (string, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing mysql dsn: %w", err)
	}
	mc.ClientFoundRows = true
	return mc.FormatDSN(), nil
}
