package entity

import (
	"context"
	"time"

	"github.com/go-entity/entity/logger"
	"github.com/go-entity/entity/schema"
)

// DefaultDateFormat storage format of date attributes when neither the definition, the config nor the driver set one
const DefaultDateFormat = "2006-01-02 15:04:05"

// Config entity config
type Config struct {
	// NamingStrategy tables, columns naming strategy
	NamingStrategy schema.Namer
	// Logger
	Logger logger.Interface
	// NowFunc the function to be used when creating a new timestamp
	NowFunc func() time.Time
	// DateFormat overrides the driver date format
	DateFormat string
}

// DB entity DB definition, it binds a Driver to a Config
type DB struct {
	*Config
	Driver Driver

	ctx context.Context
}

// Open initialize db session based on driver
func Open(driver Driver, opts ...ConfigOption) (*DB, error) {
	if driver == nil {
		return nil, ErrMissingDriver
	}

	config := &Config{}
	for _, opt := range opts {
		opt(config)
	}

	if config.NamingStrategy == nil {
		config.NamingStrategy = schema.NamingStrategy{}
	}

	if config.Logger == nil {
		config.Logger = logger.Default
	}

	if config.NowFunc == nil {
		config.NowFunc = func() time.Time { return time.Now().Local() }
	}

	return &DB{Config: config, Driver: driver}, nil
}

// WithContext returns a copy of db that runs every statement with ctx
func (db *DB) WithContext(ctx context.Context) *DB {
	tx := *db
	tx.ctx = ctx
	return &tx
}

// Context returns the context statements run with
func (db *DB) Context() context.Context {
	if db.ctx == nil {
		return context.Background()
	}
	return db.ctx
}

// dateFormat returns the configured storage date format, falling back to the driver's
func (db *DB) dateFormat() string {
	if db.Config.DateFormat != "" {
		return db.Config.DateFormat
	}
	if format := db.Driver.DateFormat(); format != "" {
		return format
	}
	return DefaultDateFormat
}

func (db *DB) exec(qb QueryBuilder) (int64, error) {
	begin := time.Now()
	rows, err := db.Driver.Execute(db.Context(), qb)
	db.trace(begin, qb, rows, err)
	return rows, err
}

func (db *DB) loadRowList(qb QueryBuilder) ([]map[string]interface{}, error) {
	begin := time.Now()
	rows, err := db.Driver.LoadRowList(db.Context(), qb)
	db.trace(begin, qb, int64(len(rows)), err)
	return rows, err
}

func (db *DB) loadRow(qb QueryBuilder) (map[string]interface{}, error) {
	begin := time.Now()
	row, err := db.Driver.LoadRow(db.Context(), qb)
	var affected int64 = -1
	if err == nil {
		affected = 0
		if row != nil {
			affected = 1
		}
	}
	db.trace(begin, qb, affected, err)
	return row, err
}

func (db *DB) trace(begin time.Time, qb QueryBuilder, rows int64, err error) {
	ctx := logger.WithDriver(db.Context(), db.Driver.Name())
	db.Logger.Trace(ctx, begin, func() (string, int64) {
		sql, vars := qb.Build()
		if filter, ok := db.Logger.(logger.ParamsFilter); ok {
			sql, vars = filter.ParamsFilter(ctx, sql, vars...)
		}
		return db.Driver.Explain(sql, vars...), rows
	}, err)
}
