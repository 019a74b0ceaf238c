package entity

import (
	"fmt"

	"github.com/go-entity/entity/utils"
)

type hasOneOrMany struct {
	relation
	foreignKey string
	localKey   string
}

func newHasOneOrMany(name string, parent *Model, related *Definition, foreignKey, localKey string, constrained bool) hasOneOrMany {
	r := hasOneOrMany{
		relation:   newRelation(name, parent, related),
		foreignKey: foreignKey,
		localKey:   localKey,
	}
	if constrained {
		r.AddConstraints()
	}
	return r
}

// ForeignKey column on the related table
func (r *hasOneOrMany) ForeignKey() string {
	return r.foreignKey
}

// LocalKey column on the parent table
func (r *hasOneOrMany) LocalKey() string {
	return r.localKey
}

// ParentKey value of the local key of the parent
func (r *hasOneOrMany) ParentKey() Value {
	return rawKey(r.parent, r.localKey)
}

func (r *hasOneOrMany) AddConstraints() {
	column := r.qualifyRelated(r.foreignKey)
	r.query.Where(column+" = ?", r.ParentKey()).WhereNotNull(column)
}

func (r *hasOneOrMany) AddEagerConstraints(models []*Model) {
	r.query.WhereIn(r.qualifyRelated(r.foreignKey), modelKeys(models, r.localKey))
}

func (r *hasOneOrMany) buildDictionary(results *Collection) map[string][]*Model {
	dictionary := map[string][]*Model{}
	for _, result := range results.All() {
		key := utils.ToStringKey(rawKey(result, r.foreignKey))
		dictionary[key] = append(dictionary[key], result)
	}
	return dictionary
}

// Make creates a related model with the foreign key set, it isn't saved
func (r *hasOneOrMany) Make(attributes map[string]interface{}) (*Model, error) {
	m, err := r.related.New(r.parent.db, attributes)
	if err != nil {
		return nil, err
	}
	r.setForeignAttributes(m)
	return m, nil
}

func (r *hasOneOrMany) setForeignAttributes(m *Model) {
	m.attributes.SetRaw(r.foreignKey, r.ParentKey())
}

// Save sets the foreign key on m and saves it
func (r *hasOneOrMany) Save(m *Model) (bool, error) {
	if m.def != r.related {
		return false, fmt.Errorf("%w: %s is not a %s", ErrInvalidArgument, m.def.Name, r.related.Name)
	}
	r.setForeignAttributes(m)
	return m.Save()
}

// SaveMany saves every model, stopping at the first failure
func (r *hasOneOrMany) SaveMany(models ...*Model) error {
	for _, m := range models {
		saved, err := r.Save(m)
		if err != nil {
			return err
		}
		if !saved {
			return fmt.Errorf("%w: %s wasn't saved", ErrInvalidArgument, m)
		}
	}
	return nil
}

// Create makes and saves a related model
func (r *hasOneOrMany) Create(attributes map[string]interface{}) (*Model, error) {
	m, err := r.Make(attributes)
	if err != nil {
		return nil, err
	}
	if _, err := m.Save(); err != nil {
		return nil, err
	}
	return m, nil
}

// CreateMany creates a related model per attributes
func (r *hasOneOrMany) CreateMany(attributes ...map[string]interface{}) (*Collection, error) {
	results := NewCollection()
	for _, attrs := range attributes {
		m, err := r.Create(attrs)
		if err != nil {
			return nil, err
		}
		results.Add(m)
	}
	return results, nil
}

// FindOrNew finds the related model by key or makes a new one
func (r *hasOneOrMany) FindOrNew(id interface{}, columns ...string) (*Model, error) {
	m, found, err := r.query.Find(id, columns...)
	if err != nil {
		return nil, err
	}
	if found {
		return m, nil
	}
	return r.Make(nil)
}

// FirstOrNew returns the first related model matching attributes or makes one with attributes
// merged over values
func (r *hasOneOrMany) FirstOrNew(attributes, values map[string]interface{}) (*Model, error) {
	m, found, err := r.query.Clone().WhereEquals(attributes).First()
	if err != nil {
		return nil, err
	}
	if found {
		return m, nil
	}
	return r.Make(mergeAttributes(attributes, values))
}

// FirstOrCreate returns the first related model matching attributes or creates one with attributes
// merged over values
func (r *hasOneOrMany) FirstOrCreate(attributes, values map[string]interface{}) (*Model, error) {
	m, err := r.FirstOrNew(attributes, values)
	if err != nil {
		return nil, err
	}
	if !m.exists {
		if _, err := m.Save(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// UpdateOrCreate finds the related model matching attributes, fills values and saves it
func (r *hasOneOrMany) UpdateOrCreate(attributes, values map[string]interface{}) (*Model, error) {
	m, err := r.FirstOrNew(attributes, nil)
	if err != nil {
		return nil, err
	}
	if err := m.SetAttributes(values); err != nil {
		return nil, err
	}
	if _, err := m.Save(); err != nil {
		return nil, err
	}
	return m, nil
}

// mergeAttributes copies values then attributes, attributes win on shared keys
func mergeAttributes(attributes, values map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(attributes)+len(values))
	for key, value := range values {
		merged[key] = value
	}
	for key, value := range attributes {
		merged[key] = value
	}
	return merged
}

func (r *hasOneOrMany) Touch() error {
	return r.touchRelated()
}

// HasOne the related table holds a foreign key to the parent, at most one row matches
type HasOne struct {
	hasOneOrMany
}

// NewHasOne creates a has one relation, constrained to parent unless eager loading
func NewHasOne(name string, parent *Model, related *Definition, foreignKey, localKey string, constrained bool) *HasOne {
	return &HasOne{newHasOneOrMany(name, parent, related, foreignKey, localKey, constrained)}
}

// InitRelation models without a match keep the relation unset
func (r *HasOne) InitRelation(models []*Model, name string) {}

func (r *HasOne) Match(models []*Model, results *Collection, name string) {
	dictionary := r.buildDictionary(results)
	for _, m := range models {
		if matches, ok := dictionary[utils.ToStringKey(rawKey(m, r.localKey))]; ok {
			m.SetRelation(name, matches[0])
		}
	}
}

func (r *HasOne) GetResults() (Value, error) {
	if r.ParentKey().IsNull() {
		return Null(), nil
	}

	m, found, err := r.query.First()
	if err != nil || !found {
		return Null(), err
	}
	return ValueOf(m), nil
}

// HasMany the related table holds a foreign key to the parent, any number of rows match
type HasMany struct {
	hasOneOrMany
}

// NewHasMany creates a has many relation, constrained to parent unless eager loading
func NewHasMany(name string, parent *Model, related *Definition, foreignKey, localKey string, constrained bool) *HasMany {
	return &HasMany{newHasOneOrMany(name, parent, related, foreignKey, localKey, constrained)}
}

func (r *HasMany) InitRelation(models []*Model, name string) {
	for _, m := range models {
		m.SetRelation(name, NewCollection())
	}
}

func (r *HasMany) Match(models []*Model, results *Collection, name string) {
	dictionary := r.buildDictionary(results)
	for _, m := range models {
		if matches, ok := dictionary[utils.ToStringKey(rawKey(m, r.localKey))]; ok {
			m.SetRelation(name, NewCollection(matches...))
		}
	}
}

func (r *HasMany) GetResults() (Value, error) {
	if r.ParentKey().IsNull() {
		return ValueOf(NewCollection()), nil
	}

	results, err := r.query.Get()
	if err != nil {
		return Null(), err
	}
	return ValueOf(results), nil
}
