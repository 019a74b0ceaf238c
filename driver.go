package entity

import "context"

// Driver is the database collaborator every model persists through
type Driver interface {
	Name() string
	// QuoteName quotes a table or column name, "users.id" => `"users"."id"`
	QuoteName(name string) string
	// Quote quotes a value as a SQL literal
	Quote(value interface{}) string
	// DateFormat storage format of dates as a Go time layout, empty to use the default
	DateFormat() string
	// Explain inlines vars into sql for logging
	Explain(sql string, vars ...interface{}) string
	NewQueryBuilder() QueryBuilder
	Execute(ctx context.Context, qb QueryBuilder) (rowsAffected int64, err error)
	// LoadRow returns a nil map when the query matches no row
	LoadRow(ctx context.Context, qb QueryBuilder) (map[string]interface{}, error)
	LoadRowList(ctx context.Context, qb QueryBuilder) ([]map[string]interface{}, error)
	LastInsertID() (interface{}, error)
}

// QueryBuilder builds a single parameterized statement, placeholders in conditions are written as "?"
type QueryBuilder interface {
	Select(columns ...string) QueryBuilder
	From(table string) QueryBuilder
	Where(condition string, args ...interface{}) QueryBuilder
	WhereIn(column string, values []interface{}) QueryBuilder
	WhereNotNull(column string) QueryBuilder
	Having(condition string, args ...interface{}) QueryBuilder
	Join(kind, table, on string) QueryBuilder
	Order(columns ...string) QueryBuilder
	Group(columns ...string) QueryBuilder
	Insert(table string) QueryBuilder
	Columns(columns ...string) QueryBuilder
	Values(values ...interface{}) QueryBuilder
	Update(table string) QueryBuilder
	Set(column string, value interface{}) QueryBuilder
	Delete(table string) QueryBuilder
	Returning(columns ...string) QueryBuilder
	Clone() QueryBuilder
	Build() (sql string, vars []interface{})
}

// LimitBuilder is implemented by query builders supporting row limits
type LimitBuilder interface {
	QueryBuilder
	SetLimit(limit, offset int) QueryBuilder
}
