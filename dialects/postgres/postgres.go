package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/go-entity/entity/dialects"
)

var numericPlaceholder = regexp.MustCompile(`\$(\d+)`)

// Config postgres dialect config
func Config() dialects.Config {
	return dialects.Config{
		Name:               "postgres",
		QuoteIdentifier:    pq.QuoteIdentifier,
		QuoteLiteral:       pq.QuoteLiteral,
		BindVar:            func(n int) string { return "$" + strconv.Itoa(n) },
		NumericPlaceholder: numericPlaceholder,
		Returning:          true,
		DateFormat:         "2006-01-02 15:04:05",
	}
}

// Open creates a pgx pool for dsn and wraps it in a database/sql pool
func Open(ctx context.Context, dsn string) (*dialects.Dialect, *sql.DB, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	return New(db), db, nil
}

// New creates a postgres dialect on an open connection pool
func New(pool dialects.ConnPool) *dialects.Dialect {
	return dialects.New(pool, Config())
}
