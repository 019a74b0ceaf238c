package dialects

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-entity/entity"
	"github.com/go-entity/entity/dialects/common/sqlbuilder"
	"github.com/go-entity/entity/logger"
)

// ConnPool db conns pool interface, satisfied by *sql.DB, *sql.Tx and *sql.Conn
type ConnPool interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Config describes the SQL flavour of a database
type Config struct {
	Name string
	// QuoteChar quotes identifiers, '`' for mysql and '"' for postgres
	QuoteChar byte
	// QuoteIdentifier overrides QuoteChar quoting of a single identifier
	QuoteIdentifier func(name string) string
	// QuoteLiteral overrides the quoting of string literals
	QuoteLiteral func(literal string) string
	// BindVar placeholder of the n-th var, "?" when nil
	BindVar func(n int) string
	// NumericPlaceholder matches numbered placeholders when explaining statements
	NumericPlaceholder *regexp.Regexp
	// Returning the database supports INSERT ... RETURNING
	Returning  bool
	DateFormat string
}

// Dialect implements entity.Driver on top of database/sql
type Dialect struct {
	Config
	ConnPool ConnPool

	mu           sync.Mutex
	lastInsertID interface{}
}

var _ entity.Driver = (*Dialect)(nil)

// New creates a dialect running statements on pool
func New(pool ConnPool, config Config) *Dialect {
	return &Dialect{Config: config, ConnPool: pool}
}

// Name driver name
func (d *Dialect) Name() string {
	return d.Config.Name
}

// QuoteName quotes every segment of a dotted name, "*" is kept as is
func (d *Dialect) QuoteName(name string) string {
	parts := strings.Split(name, ".")
	for idx, part := range parts {
		switch {
		case part == "*":
		case d.QuoteIdentifier != nil:
			parts[idx] = d.QuoteIdentifier(part)
		case d.QuoteChar != 0:
			q := string(d.QuoteChar)
			parts[idx] = q + strings.ReplaceAll(part, q, q+q) + q
		}
	}
	return strings.Join(parts, ".")
}

// Quote quotes value as a SQL literal
func (d *Dialect) Quote(value interface{}) string {
	if s, ok := value.(string); ok && d.QuoteLiteral != nil {
		return d.QuoteLiteral(s)
	}
	return logger.ExplainSQL("?", nil, "'", value)
}

// DateFormat storage format of dates
func (d *Dialect) DateFormat() string {
	return d.Config.DateFormat
}

// Explain inlines vars into sql
func (d *Dialect) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, d.NumericPlaceholder, "'", vars...)
}

// NewQueryBuilder returns a builder of the dialect's flavour
func (d *Dialect) NewQueryBuilder() entity.QueryBuilder {
	return sqlbuilder.New(sqlbuilder.Config{
		QuoteName: d.QuoteName,
		BindVar:   d.BindVar,
		Returning: d.Returning,
	})
}

// Execute runs an insert, update or delete. Inserts record the generated key, read from
// RETURNING when the database supports it
func (d *Dialect) Execute(ctx context.Context, qb entity.QueryBuilder) (int64, error) {
	stmt, vars := qb.Build()

	b, isBuilder := qb.(*sqlbuilder.Builder)
	if isBuilder && b.IsInsert() && len(b.ReturningColumns()) > 0 {
		var id interface{}
		if err := d.ConnPool.QueryRowContext(ctx, stmt, vars...).Scan(&id); err != nil {
			return 0, fmt.Errorf("%s: exec: %w", d.Config.Name, err)
		}
		d.setLastInsertID(normalize(id))
		return 1, nil
	}

	result, err := d.ConnPool.ExecContext(ctx, stmt, vars...)
	if err != nil {
		return 0, fmt.Errorf("%s: exec: %w", d.Config.Name, err)
	}

	if isBuilder && b.IsInsert() {
		if id, err := result.LastInsertId(); err == nil {
			d.setLastInsertID(id)
		} else {
			d.setLastInsertID(nil)
		}
	}

	return result.RowsAffected()
}

// LoadRow returns the first row, nil when there is none
func (d *Dialect) LoadRow(ctx context.Context, qb entity.QueryBuilder) (map[string]interface{}, error) {
	rows, err := d.LoadRowList(ctx, qb)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// LoadRowList returns every row as a column => value map, []byte values become strings
func (d *Dialect) LoadRowList(ctx context.Context, qb entity.QueryBuilder) ([]map[string]interface{}, error) {
	stmt, vars := qb.Build()

	rows, err := d.ConnPool.QueryContext(ctx, stmt, vars...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", d.Config.Name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for idx := range values {
			pointers[idx] = &values[idx]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for idx, column := range columns {
			row[column] = normalize(values[idx])
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// LastInsertID key generated by the last insert, nil when unknown
func (d *Dialect) LastInsertID() (interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastInsertID, nil
}

func (d *Dialect) setLastInsertID(id interface{}) {
	d.mu.Lock()
	d.lastInsertID = id
	d.mu.Unlock()
}

func normalize(value interface{}) interface{} {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}
