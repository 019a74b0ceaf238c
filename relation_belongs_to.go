package entity

import (
	"fmt"

	"github.com/go-entity/entity/utils"
)

// BelongsTo the parent holds a foreign key to the owner key of the related table
type BelongsTo struct {
	relation
	foreignKey string
	ownerKey   string
}

// NewBelongsTo creates a belongs to relation, constrained to parent unless eager loading
func NewBelongsTo(name string, parent *Model, related *Definition, foreignKey, ownerKey string, constrained bool) *BelongsTo {
	r := &BelongsTo{
		relation:   newRelation(name, parent, related),
		foreignKey: foreignKey,
		ownerKey:   ownerKey,
	}
	if constrained {
		r.AddConstraints()
	}
	return r
}

// ForeignKey column on the parent table
func (r *BelongsTo) ForeignKey() string {
	return r.foreignKey
}

// OwnerKey column on the related table
func (r *BelongsTo) OwnerKey() string {
	return r.ownerKey
}

func (r *BelongsTo) AddConstraints() {
	r.query.Where(r.qualifyRelated(r.ownerKey)+" = ?", rawKey(r.parent, r.foreignKey))
}

func (r *BelongsTo) AddEagerConstraints(models []*Model) {
	r.query.WhereIn(r.qualifyRelated(r.ownerKey), modelKeys(models, r.foreignKey))
}

// InitRelation models without an owner keep the relation unset
func (r *BelongsTo) InitRelation(models []*Model, name string) {}

func (r *BelongsTo) Match(models []*Model, results *Collection, name string) {
	dictionary := map[string]*Model{}
	for _, result := range results.All() {
		dictionary[utils.ToStringKey(rawKey(result, r.ownerKey))] = result
	}

	for _, m := range models {
		if owner, ok := dictionary[utils.ToStringKey(rawKey(m, r.foreignKey))]; ok {
			m.SetRelation(name, owner)
		}
	}
}

func (r *BelongsTo) GetResults() (Value, error) {
	if rawKey(r.parent, r.foreignKey).IsNull() {
		return Null(), nil
	}

	m, found, err := r.query.First()
	if err != nil || !found {
		return Null(), err
	}
	return ValueOf(m), nil
}

// Associate points the foreign key of the parent at owner and sets the relation, the parent isn't saved
func (r *BelongsTo) Associate(owner *Model) error {
	if owner == nil {
		return r.Dissociate()
	}
	if owner.def != r.related {
		return fmt.Errorf("%w: %s is not a %s", ErrInvalidArgument, owner.def.Name, r.related.Name)
	}

	r.parent.attributes.SetRaw(r.foreignKey, rawKey(owner, r.ownerKey))
	r.parent.SetRelation(r.name, owner)
	return nil
}

// Dissociate clears the foreign key of the parent and the relation, the parent isn't saved
func (r *BelongsTo) Dissociate() error {
	r.parent.attributes.SetRaw(r.foreignKey, Null())
	r.parent.SetRelation(r.name, nil)
	return nil
}

func (r *BelongsTo) Touch() error {
	if rawKey(r.parent, r.foreignKey).IsNull() {
		return nil
	}
	return r.touchRelated()
}
