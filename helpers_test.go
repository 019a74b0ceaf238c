package entity

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-entity/entity/logger"
)

type fakeBuilder struct {
	kind    string
	table   string
	columns []string
	values  []interface{}
	sets    []string
	setArgs []interface{}
	joins   []string
	wheres  []string
	args    []interface{}
	orders  []string
	limit   int
}

func (b *fakeBuilder) Select(columns ...string) QueryBuilder {
	b.kind = "SELECT"
	b.columns = append(b.columns, columns...)
	return b
}

func (b *fakeBuilder) From(table string) QueryBuilder {
	b.table = table
	return b
}

func (b *fakeBuilder) Where(condition string, args ...interface{}) QueryBuilder {
	b.wheres = append(b.wheres, condition)
	b.args = append(b.args, args...)
	return b
}

func (b *fakeBuilder) WhereIn(column string, values []interface{}) QueryBuilder {
	return b.Where(column+" IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")+")", values...)
}

func (b *fakeBuilder) WhereNotNull(column string) QueryBuilder {
	return b.Where(column + " IS NOT NULL")
}

func (b *fakeBuilder) Having(condition string, args ...interface{}) QueryBuilder {
	return b.Where(condition, args...)
}

func (b *fakeBuilder) Join(kind, table, on string) QueryBuilder {
	b.joins = append(b.joins, kind+" JOIN "+table+" ON "+on)
	return b
}

func (b *fakeBuilder) Order(columns ...string) QueryBuilder {
	b.orders = append(b.orders, columns...)
	return b
}

func (b *fakeBuilder) Group(columns ...string) QueryBuilder {
	return b
}

func (b *fakeBuilder) Insert(table string) QueryBuilder {
	b.kind, b.table = "INSERT", table
	return b
}

func (b *fakeBuilder) Columns(columns ...string) QueryBuilder {
	b.columns = append(b.columns, columns...)
	return b
}

func (b *fakeBuilder) Values(values ...interface{}) QueryBuilder {
	b.values = append(b.values, values...)
	return b
}

func (b *fakeBuilder) Update(table string) QueryBuilder {
	b.kind, b.table = "UPDATE", table
	return b
}

func (b *fakeBuilder) Set(column string, value interface{}) QueryBuilder {
	b.sets = append(b.sets, column+" = ?")
	b.setArgs = append(b.setArgs, value)
	return b
}

func (b *fakeBuilder) Delete(table string) QueryBuilder {
	b.kind, b.table = "DELETE", table
	return b
}

func (b *fakeBuilder) Returning(columns ...string) QueryBuilder {
	return b
}

func (b *fakeBuilder) Clone() QueryBuilder {
	clone := *b
	clone.columns = append([]string(nil), b.columns...)
	clone.joins = append([]string(nil), b.joins...)
	clone.wheres = append([]string(nil), b.wheres...)
	clone.args = append([]interface{}(nil), b.args...)
	clone.orders = append([]string(nil), b.orders...)
	return &clone
}

func (b *fakeBuilder) Build() (string, []interface{}) {
	var sql string
	switch b.kind {
	case "INSERT":
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(b.values)), ", ")
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", b.table, strings.Join(b.columns, ", "), placeholders), b.values
	case "UPDATE":
		sql = "UPDATE " + b.table + " SET " + strings.Join(b.sets, ", ")
	case "DELETE":
		sql = "DELETE FROM " + b.table
	default:
		sql = "SELECT " + strings.Join(b.columns, ", ") + " FROM " + b.table
	}

	for _, join := range b.joins {
		sql += " " + join
	}

	if len(b.wheres) > 0 {
		sql += " WHERE " + strings.Join(b.wheres, " AND ")
	}
	if len(b.orders) > 0 {
		sql += " ORDER BY " + strings.Join(b.orders, ", ")
	}
	if b.limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", b.limit)
	}
	return sql, append(append([]interface{}(nil), b.setArgs...), b.args...)
}

type fakeLimitBuilder struct {
	*fakeBuilder
}

func (b fakeLimitBuilder) SetLimit(limit, offset int) QueryBuilder {
	b.limit = limit
	return b
}

func (b fakeLimitBuilder) Clone() QueryBuilder {
	return fakeLimitBuilder{b.fakeBuilder.Clone().(*fakeBuilder)}
}

type fakeDriver struct {
	limits     bool
	rows       []map[string]interface{}
	respond    func(sql string) []map[string]interface{}
	count      int64
	lastID     interface{}
	err        error
	statements []string
	vars       [][]interface{}
}

func (d *fakeDriver) Name() string                   { return "fake" }
func (d *fakeDriver) QuoteName(name string) string   { return name }
func (d *fakeDriver) Quote(value interface{}) string { return logger.ExplainSQL("?", nil, "'", value) }
func (d *fakeDriver) DateFormat() string             { return "" }

func (d *fakeDriver) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, nil, "'", vars...)
}

func (d *fakeDriver) NewQueryBuilder() QueryBuilder {
	if d.limits {
		return fakeLimitBuilder{&fakeBuilder{}}
	}
	return &fakeBuilder{}
}

func (d *fakeDriver) record(qb QueryBuilder) {
	sql, vars := qb.Build()
	d.statements = append(d.statements, sql)
	d.vars = append(d.vars, vars)
}

func (d *fakeDriver) Execute(ctx context.Context, qb QueryBuilder) (int64, error) {
	d.record(qb)
	if d.err != nil {
		return 0, d.err
	}
	return 1, nil
}

func (d *fakeDriver) LoadRow(ctx context.Context, qb QueryBuilder) (map[string]interface{}, error) {
	d.record(qb)
	return map[string]interface{}{"aggregate": d.count}, d.err
}

func (d *fakeDriver) LoadRowList(ctx context.Context, qb QueryBuilder) ([]map[string]interface{}, error) {
	d.record(qb)
	if d.respond != nil {
		return d.respond(d.lastStatement()), d.err
	}
	return d.rows, d.err
}

func (d *fakeDriver) LastInsertID() (interface{}, error) {
	return d.lastID, nil
}

func (d *fakeDriver) lastStatement() string {
	if len(d.statements) == 0 {
		return ""
	}
	return d.statements[len(d.statements)-1]
}

var testNow = time.Date(2020, 2, 3, 4, 5, 6, 0, time.Local)

func newFakeDB(t *testing.T, driver *fakeDriver, opts ...ConfigOption) *DB {
	t.Helper()

	opts = append([]ConfigOption{WithLogger(logger.Discard), WithNowFunc(func() time.Time { return testNow })}, opts...)
	db, err := Open(driver, opts...)
	if err != nil {
		t.Fatalf("failed to open db, got error %v", err)
	}
	return db
}
