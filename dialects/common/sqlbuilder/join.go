package sqlbuilder

import (
	"strings"

	"github.com/go-entity/entity"
)

type join struct {
	kind  string
	table string
	on    string
}

// Join adds "kind JOIN table ON on", kind defaults to INNER
func (b *Builder) Join(kind, table, on string) entity.QueryBuilder {
	kind = strings.ToUpper(strings.TrimSpace(kind))
	if kind == "" {
		kind = "INNER"
	}
	b.joins = append(b.joins, join{kind: kind, table: table, on: on})
	return b
}

func (b *Builder) buildJoins(sql *strings.Builder) {
	for _, j := range b.joins {
		sql.WriteString(" " + j.kind + " JOIN ")
		sql.WriteString(b.quote(j.table))
		if j.on != "" {
			sql.WriteString(" ON " + j.on)
		}
	}
}
