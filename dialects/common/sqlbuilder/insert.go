package sqlbuilder

import (
	"strings"

	"github.com/go-entity/entity"
)

// Insert turns b into an insert into table
func (b *Builder) Insert(table string) entity.QueryBuilder {
	b.kind = insertStatement
	b.table = table
	b.columns = nil
	return b
}

// Columns sets the inserted columns
func (b *Builder) Columns(columns ...string) entity.QueryBuilder {
	b.columns = append(b.columns, columns...)
	return b
}

// Values adds a row of values, one per column
func (b *Builder) Values(values ...interface{}) entity.QueryBuilder {
	b.values = append(b.values, values)
	return b
}

// Returning columns returned by the insert, ignored when the database doesn't support it
func (b *Builder) Returning(columns ...string) entity.QueryBuilder {
	b.returning = append(b.returning, columns...)
	return b
}

func (b *Builder) buildInsert(sql *strings.Builder) (args []interface{}) {
	sql.WriteString("INSERT INTO ")
	sql.WriteString(b.quote(b.table))

	if len(b.columns) == 0 || len(b.values) == 0 {
		sql.WriteString(" DEFAULT VALUES")
	} else {
		// Write columns (column1, column2, column3)
		sql.WriteString(" (")
		for idx, column := range b.columns {
			if idx > 0 {
				sql.WriteString(", ")
			}
			sql.WriteString(b.quote(column))
		}

		// Write values (v1, v2, v3), (v2-1, v2-2, v2-3)
		sql.WriteString(") VALUES ")
		for idx, row := range b.values {
			if idx > 0 {
				sql.WriteString(", ")
			}
			sql.WriteString("(")
			sql.WriteString(placeholders(len(row)))
			sql.WriteString(")")
			args = append(args, row...)
		}
	}

	if returning := b.ReturningColumns(); len(returning) > 0 {
		sql.WriteString(" RETURNING ")
		for idx, column := range returning {
			if idx > 0 {
				sql.WriteString(", ")
			}
			sql.WriteString(b.quote(column))
		}
	}

	return args
}
