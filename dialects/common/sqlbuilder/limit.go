package sqlbuilder

import (
	"strconv"
	"strings"

	"github.com/go-entity/entity"
)

// SetLimit limits a select, a limit below 1 removes it
func (b *Builder) SetLimit(limit, offset int) entity.QueryBuilder {
	b.limit, b.offset = nil, nil
	if limit > 0 {
		b.limit = &limit
	}
	if offset > 0 {
		b.offset = &offset
	}
	return b
}

func (b *Builder) buildLimit(sql *strings.Builder) {
	if b.limit != nil {
		sql.WriteString(" LIMIT " + strconv.Itoa(*b.limit))

		if b.offset != nil {
			sql.WriteString(" OFFSET " + strconv.Itoa(*b.offset))
		}
	}
}
