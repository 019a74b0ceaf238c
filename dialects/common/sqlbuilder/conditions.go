package sqlbuilder

import (
	"strings"

	"github.com/go-entity/entity"
)

// Where adds a condition, conditions are joined with AND
func (b *Builder) Where(condition string, args ...interface{}) entity.QueryBuilder {
	b.conditions = append(b.conditions, Expr{SQL: condition, Args: args})
	return b
}

// WhereIn adds "column IN (...)", an empty list matches nothing
func (b *Builder) WhereIn(column string, values []interface{}) entity.QueryBuilder {
	if len(values) == 0 {
		return b.Where("0 = 1")
	}
	return b.Where(column+" IN ("+placeholders(len(values))+")", values...)
}

// WhereNotNull adds "column IS NOT NULL"
func (b *Builder) WhereNotNull(column string) entity.QueryBuilder {
	return b.Where(column + " IS NOT NULL")
}

// Having adds a having condition
func (b *Builder) Having(condition string, args ...interface{}) entity.QueryBuilder {
	b.having = append(b.having, Expr{SQL: condition, Args: args})
	return b
}

func (b *Builder) buildWhere(sql *strings.Builder) []interface{} {
	if len(b.conditions) == 0 {
		return nil
	}
	sql.WriteString(" WHERE ")
	return writeConditions(sql, b.conditions)
}

func writeConditions(sql *strings.Builder, conditions []Expr) (args []interface{}) {
	for idx, cond := range conditions {
		if idx > 0 {
			sql.WriteString(" AND ")
		}
		if len(conditions) > 1 && strings.Contains(strings.ToUpper(cond.SQL), " OR ") {
			sql.WriteString("(" + cond.SQL + ")")
		} else {
			sql.WriteString(cond.SQL)
		}
		args = append(args, cond.Args...)
	}
	return args
}
