package sqlite

import (
	"database/sql"

	// register the pure Go "sqlite" driver
	_ "modernc.org/sqlite"

	"github.com/go-entity/entity/dialects"
)

// DriverName database/sql driver name
const DriverName = "sqlite"

// Config sqlite dialect config
func Config() dialects.Config {
	return dialects.Config{
		Name:       "sqlite",
		QuoteChar:  '`',
		DateFormat: "2006-01-02 15:04:05",
	}
}

// Open opens dsn, ":memory:" databases are limited to a single connection so every statement sees the same data
func Open(dsn string) (*dialects.Dialect, *sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, nil, err
	}

	if dsn == ":memory:" || dsn == "" {
		db.SetMaxOpenConns(1)
	}

	return New(db), db, nil
}

// New creates a sqlite dialect on an open connection pool
func New(pool dialects.ConnPool) *dialects.Dialect {
	return dialects.New(pool, Config())
}
