package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect identifies the SQL engine behind a DB
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// Config describes how to reach the database
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB wraps the connection pool together with its dialect
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Builder returns a squirrel statement builder using the dialect's placeholders
func (db *DB) Builder() squirrel.StatementBuilderType {
	if db.Dialect == DialectPostgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// Open opens the database connection described by cfg
func Open(cfg Config) (*DB, error) {
	var (
		dialect    Dialect
		driverName string
		dsn        = cfg.DSN
	)

	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite", "sqlite3":
		dialect, driverName = DialectSQLite, "sqlite3"
		dsn = sqliteDSN(cfg.DSN)
	case "postgres", "pgx":
		dialect, driverName = DialectPostgres, "pgx"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	// An in-memory SQLite database exists per connection
	if dialect == DialectSQLite && strings.Contains(dsn, ":memory:") {
		conn.SetMaxOpenConns(1)
	}

	// Test the connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: conn, Dialect: dialect}, nil
}

// Initialize opens the database connection and runs migrations
func Initialize(ctx context.Context, cfg Config) (*DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// sqliteDSN enables foreign keys on every pooled connection, waits on locks
// instead of failing, and makes write transactions take the lock up front.
func sqliteDSN(path string) string {
	if path == "" {
		path = "expenseflow.db"
	}
	params := "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + "?" + params
}
