package sqlbuilder

import (
	"strings"

	"github.com/go-entity/entity"
)

type statementKind uint8

const (
	selectStatement statementKind = iota
	insertStatement
	updateStatement
	deleteStatement
)

// Config how the builder quotes names and writes bind vars
type Config struct {
	// QuoteName quotes table and column names, names are written as is when nil
	QuoteName func(name string) string
	// BindVar returns the placeholder of the n-th var (1-based), "?" when nil
	BindVar func(n int) string
	// Returning the database supports INSERT ... RETURNING
	Returning bool
}

// Expr raw SQL with "?" placeholders
type Expr struct {
	SQL  string
	Args []interface{}
}

// Builder builds a single statement, every method mutates and returns the builder
type Builder struct {
	Config

	kind       statementKind
	table      string
	columns    []string
	values     [][]interface{}
	sets       []assignment
	conditions []Expr
	joins      []join
	orderBy    []string
	groupBy    []string
	having     []Expr
	returning  []string
	limit      *int
	offset     *int
}

var _ entity.LimitBuilder = (*Builder)(nil)

// New returns a select builder
func New(config Config) *Builder {
	return &Builder{Config: config}
}

func (b *Builder) quote(name string) string {
	if b.QuoteName == nil {
		return name
	}
	return b.QuoteName(name)
}

// Clone returns an independent copy of b
func (b *Builder) Clone() entity.QueryBuilder {
	clone := *b
	clone.columns = append([]string(nil), b.columns...)
	clone.values = append([][]interface{}(nil), b.values...)
	clone.sets = append([]assignment(nil), b.sets...)
	clone.conditions = append([]Expr(nil), b.conditions...)
	clone.joins = append([]join(nil), b.joins...)
	clone.orderBy = append([]string(nil), b.orderBy...)
	clone.groupBy = append([]string(nil), b.groupBy...)
	clone.having = append([]Expr(nil), b.having...)
	clone.returning = append([]string(nil), b.returning...)
	return &clone
}

// IsInsert reports whether b builds an insert
func (b *Builder) IsInsert() bool {
	return b.kind == insertStatement
}

// ReturningColumns columns returned by an insert, only when the database supports it
func (b *Builder) ReturningColumns() []string {
	if !b.Config.Returning || b.kind != insertStatement {
		return nil
	}
	return b.returning
}

// Build returns the statement and its vars
func (b *Builder) Build() (string, []interface{}) {
	var (
		sql  strings.Builder
		args []interface{}
	)

	switch b.kind {
	case insertStatement:
		args = b.buildInsert(&sql)
	case updateStatement:
		args = b.buildUpdate(&sql)
		args = append(args, b.buildWhere(&sql)...)
	case deleteStatement:
		sql.WriteString("DELETE FROM ")
		sql.WriteString(b.quote(b.table))
		args = b.buildWhere(&sql)
	default:
		b.buildSelect(&sql)
		b.buildJoins(&sql)
		args = append(args, b.buildWhere(&sql)...)
		args = append(args, b.buildGroup(&sql)...)
		b.buildOrder(&sql)
		b.buildLimit(&sql)
	}

	return b.bindVars(sql.String()), args
}

// bindVars rewrites "?" placeholders outside of quoted literals with BindVar
func (b *Builder) bindVars(sql string) string {
	if b.BindVar == nil {
		return sql
	}

	var (
		result  strings.Builder
		n       int
		inQuote byte
	)
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case inQuote != 0:
			if c == inQuote {
				inQuote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			inQuote = c
		case c == '?':
			n++
			result.WriteString(b.BindVar(n))
			continue
		}
		result.WriteByte(c)
	}
	return result.String()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
