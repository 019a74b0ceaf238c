package sqlbuilder

import (
	"strings"

	"github.com/go-entity/entity"
)

type assignment struct {
	column string
	value  interface{}
}

// Update turns b into an update of table, conditions are kept
func (b *Builder) Update(table string) entity.QueryBuilder {
	b.kind = updateStatement
	b.table = table
	return b
}

// Set assigns value to column, assigning the same column twice keeps the last value
func (b *Builder) Set(column string, value interface{}) entity.QueryBuilder {
	for idx, set := range b.sets {
		if set.column == column {
			b.sets[idx].value = value
			return b
		}
	}
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

func (b *Builder) buildUpdate(sql *strings.Builder) []interface{} {
	args := make([]interface{}, 0, len(b.sets))

	sql.WriteString("UPDATE ")
	sql.WriteString(b.quote(b.table))
	sql.WriteString(" SET ")
	for idx, set := range b.sets {
		if idx > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString(b.quote(set.column))
		sql.WriteString(" = ?")
		args = append(args, set.value)
	}
	return args
}
