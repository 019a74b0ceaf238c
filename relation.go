package entity

import (
	"sort"

	"github.com/go-entity/entity/utils"
)

// Relation connects a parent model to the models of a related definition
type Relation interface {
	Name() string
	// Query the query on the related table, constraints applied
	Query() *Query
	Parent() *Model
	Related() *Definition
	// AddConstraints constrains the query to the parent model
	AddConstraints()
	// AddEagerConstraints constrains the query to a batch of parent models
	AddEagerConstraints(models []*Model)
	// InitRelation sets the empty default of the relation on every model
	InitRelation(models []*Model, name string)
	// Match attaches the eager loaded results to their parents
	Match(models []*Model, results *Collection, name string)
	// GetResults returns the related *Model, *Collection or null of the parent
	GetResults() (Value, error)
	// GetEager runs the eager query
	GetEager() (*Collection, error)
	// Touch stamps the updated column of the related models
	Touch() error
}

type relation struct {
	name    string
	parent  *Model
	related *Definition
	query   *Query
}

func newRelation(name string, parent *Model, related *Definition) relation {
	return relation{
		name:    name,
		parent:  parent,
		related: related,
		query:   newQuery(parent.db, related),
	}
}

func (r *relation) Name() string {
	return r.name
}

func (r *relation) Query() *Query {
	return r.query
}

func (r *relation) Parent() *Model {
	return r.parent
}

func (r *relation) Related() *Definition {
	return r.related
}

func (r *relation) GetEager() (*Collection, error) {
	return r.query.Get()
}

func (r *relation) relatedTable() string {
	return r.related.TableName(r.parent.db.NamingStrategy)
}

func (r *relation) qualifyRelated(column string) string {
	return r.parent.db.Driver.QuoteName(r.relatedTable() + "." + column)
}

// touchRelated stamps the updated column of the rows matched by the relation query
func (r *relation) touchRelated() error {
	if !r.related.Timestamps {
		return nil
	}

	related := r.related.newInstance(r.parent.db)
	_, err := r.query.Clone().UpdateColumns(map[string]interface{}{
		related.timestamps.UpdatedAt: related.FreshTimestampString(),
	})
	return err
}

// modelKeys collects the distinct non-null values of key, sorted numerically when every key is numeric
func modelKeys(models []*Model, key string) []interface{} {
	var (
		keys    []Value
		seen    = map[string]bool{}
		numeric = true
	)

	for _, m := range models {
		value, ok := m.attributes.GetRaw(key)
		if !ok || value.IsNull() {
			continue
		}

		id := utils.ToStringKey(value)
		if seen[id] {
			continue
		}
		seen[id] = true

		numeric = numeric && value.isNumeric()
		keys = append(keys, value)
	}

	if numeric {
		sort.SliceStable(keys, func(i, j int) bool {
			return keys[i].Float() < keys[j].Float()
		})
	} else {
		sort.SliceStable(keys, func(i, j int) bool {
			return keys[i].String() < keys[j].String()
		})
	}

	result := make([]interface{}, len(keys))
	for idx, key := range keys {
		result[idx], _ = key.Value()
	}
	return result
}

func rawKey(m *Model, key string) Value {
	value, _ := m.attributes.GetRaw(key)
	return value
}
