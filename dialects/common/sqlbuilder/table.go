package sqlbuilder

import (
	"strings"

	"github.com/go-entity/entity"
)

// Select adds columns to a select, they are written as is
func (b *Builder) Select(columns ...string) entity.QueryBuilder {
	b.kind = selectStatement
	b.columns = append(b.columns, columns...)
	return b
}

// From sets the table selected from
func (b *Builder) From(table string) entity.QueryBuilder {
	b.table = table
	return b
}

// Delete turns b into a delete on table, conditions are kept
func (b *Builder) Delete(table string) entity.QueryBuilder {
	b.kind = deleteStatement
	b.table = table
	return b
}

func (b *Builder) buildSelect(sql *strings.Builder) {
	sql.WriteString("SELECT ")
	if len(b.columns) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.columns, ", "))
	}

	if b.table != "" {
		sql.WriteString(" FROM ")
		sql.WriteString(b.quote(b.table))
	}
}
