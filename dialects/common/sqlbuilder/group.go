package sqlbuilder

import (
	"strings"

	"github.com/go-entity/entity"
)

// Group adds group by columns
func (b *Builder) Group(columns ...string) entity.QueryBuilder {
	b.groupBy = append(b.groupBy, columns...)
	return b
}

func (b *Builder) buildGroup(sql *strings.Builder) []interface{} {
	if len(b.groupBy) > 0 {
		sql.WriteString(" GROUP BY ")
		sql.WriteString(strings.Join(b.groupBy, ", "))
	}

	if len(b.having) > 0 {
		sql.WriteString(" HAVING ")
		return writeConditions(sql, b.having)
	}
	return nil
}
