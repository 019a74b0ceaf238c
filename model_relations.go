package entity

import (
	"fmt"
	"sort"
	"strings"
)

// RelationSet holds the relations loaded onto a model
type RelationSet struct {
	loaded map[string]Value
}

func newRelationSet() *RelationSet {
	return &RelationSet{loaded: map[string]Value{}}
}

// Get returns the loaded relation
func (rs *RelationSet) Get(name string) (Value, bool) {
	v, ok := rs.loaded[name]
	return v, ok
}

// Set stores a loaded relation, a Model, a Collection or null
func (rs *RelationSet) Set(name string, value Value) {
	rs.loaded[name] = value
}

// Unset forgets a loaded relation
func (rs *RelationSet) Unset(name string) {
	delete(rs.loaded, name)
}

// Len number of loaded relations
func (rs *RelationSet) Len() int {
	return len(rs.loaded)
}

// Names returns the loaded relation names, sorted
func (rs *RelationSet) Names() []string {
	names := make([]string, 0, len(rs.loaded))
	for name := range rs.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a copy of the loaded relations
func (rs *RelationSet) All() map[string]Value {
	return copyValues(rs.loaded)
}

// Relations returns the loaded relations
func (m *Model) Relations() map[string]Value {
	return m.relations.All()
}

// GetRelation returns a loaded relation
func (m *Model) GetRelation(name string) (Value, bool) {
	return m.relations.Get(name)
}

// SetRelation attaches a loaded relation, value is a *Model, a *Collection or nil
func (m *Model) SetRelation(name string, value interface{}) {
	m.relations.Set(name, ValueOf(value))
}

// UnsetRelation forgets a loaded relation
func (m *Model) UnsetRelation(name string) {
	m.relations.Unset(name)
}

// RelationLoaded reports whether name was loaded
func (m *Model) RelationLoaded(name string) bool {
	_, ok := m.relations.Get(name)
	return ok
}

// Relation builds the registered relation name, constrained to m
func (m *Model) Relation(name string) (Relation, error) {
	factory, err := m.def.relation(name)
	if err != nil {
		return nil, err
	}
	return factory(m, true), nil
}

// GetRelationValue returns the loaded relation name, running the relation query on first access
func (m *Model) GetRelationValue(name string) (Value, error) {
	if v, ok := m.relations.Get(name); ok {
		return v, nil
	}

	relation, err := m.Relation(name)
	if err != nil {
		return Null(), err
	}

	v, err := relation.GetResults()
	if err != nil {
		return Null(), err
	}
	m.relations.Set(name, v)
	return v, nil
}

// GetNested walks relations along a dotted path and returns the attribute it ends with,
// "profile.profile_key". A missing related model gives null
func (m *Model) GetNested(path string) (Value, error) {
	segments := strings.Split(path, ".")
	current := m

	for _, name := range segments[:len(segments)-1] {
		v, err := current.GetRelationValue(name)
		if err != nil {
			return Null(), err
		}

		switch v.Kind() {
		case KindNull:
			return Null(), nil
		case KindModel:
			current = v.Model()
		default:
			return Null(), fmt.Errorf("%w: %s of %s is a %s", ErrInvalidArgument, name, path, v.Kind())
		}
	}

	return current.Get(segments[len(segments)-1])
}

// Load eager loads relations onto m, "name", "name:col1,col2" and "name.nested" are accepted
func (m *Model) Load(relations ...string) error {
	query := m.newQueryWithoutRelationships().With(relations...)
	if query.Error != nil {
		return query.Error
	}
	return query.eagerLoadRelations([]*Model{m})
}

// Touches reports whether saving m touches the owners of relation
func (m *Model) Touches(relation string) bool {
	for _, name := range m.def.Touches {
		if name == relation {
			return true
		}
	}
	return false
}

// TouchOwners touches the relations declared in Touches, then their own owners recursively
func (m *Model) TouchOwners() error {
	for _, name := range m.def.Touches {
		relation, err := m.Relation(name)
		if err != nil {
			return err
		}

		if err := relation.Touch(); err != nil {
			return err
		}

		loaded, ok := m.relations.Get(name)
		if !ok {
			continue
		}

		switch loaded.Kind() {
		case KindModel:
			if err := loaded.Model().TouchOwners(); err != nil {
				return err
			}
		case KindCollection:
			if err := loaded.Collection().Each(func(related *Model) error {
				return related.TouchOwners()
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
