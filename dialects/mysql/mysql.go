package mysql

import (
	"database/sql"

	"github.com/go-sql-driver/mysql"

	"github.com/go-entity/entity/dialects"
)

// Config mysql dialect config
func Config() dialects.Config {
	return dialects.Config{
		Name:       "mysql",
		QuoteChar:  '`',
		DateFormat: "2006-01-02 15:04:05",
	}
}

// Open parses dsn and opens a connection pool, dates are loaded as strings
func Open(dsn string) (*dialects.Dialect, *sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, nil, err
	}
	cfg.ParseTime = false

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, nil, err
	}

	db := sql.OpenDB(connector)
	return New(db), db, nil
}

// New creates a mysql dialect on an open connection pool
func New(pool dialects.ConnPool) *dialects.Dialect {
	return dialects.New(pool, Config())
}
