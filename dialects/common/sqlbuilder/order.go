package sqlbuilder

import (
	"strings"

	"github.com/go-entity/entity"
)

// Order adds order by expressions, "id DESC"
func (b *Builder) Order(columns ...string) entity.QueryBuilder {
	b.orderBy = append(b.orderBy, columns...)
	return b
}

func (b *Builder) buildOrder(sql *strings.Builder) {
	if len(b.orderBy) > 0 {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(b.orderBy, ", "))
	}
}
