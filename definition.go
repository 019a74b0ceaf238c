package entity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-entity/entity/schema"
	"github.com/go-entity/entity/utils"
)

// GetMutator computes the value of an attribute on read, raw is the stored value or null
type GetMutator func(m *Model, raw Value) (Value, error)

// SetMutator owns the write of an attribute, it may set any other attribute of m
type SetMutator func(m *Model, value Value) error

// RelationFactory builds the relation for parent, constrained is false while eager loading
// so only the batch constraints apply
type RelationFactory func(parent *Model, constrained bool) Relation

// Definition declares an entity type: its table, keys, casts and relations
type Definition struct {
	// Name type name, used to derive the table, "UserProfile" => "user_profiles"
	Name string
	// Table overrides the derived table name
	Table string
	// PrimaryKey defaults to "id"
	PrimaryKey string
	// KeyType cast of the primary key, defaults to "int"
	KeyType string
	// NotIncrementing the primary key isn't generated by the database
	NotIncrementing bool
	// Timestamps maintain the created/updated columns
	Timestamps bool
	// DateFormat overrides the storage format of dates, a Go time layout
	DateFormat string
	// Columns optional list of known columns, enables strict Set on new models
	Columns []string
	Casts   map[string]string
	Dates   []string
	Hidden  []string
	// ColumnAlias maps accessor names to columns, {"createdAt": "created"}
	ColumnAlias map[string]string
	// With relations loaded on every query, "name" or "name:col1,col2"
	With []string
	// Touches relations whose owners are touched when a model is saved
	Touches []string
	Getters map[string]GetMutator
	Setters map[string]SetMutator

	relations map[string]RelationFactory
}

// Define validates d and fills in defaults
func Define(d Definition) (*Definition, error) {
	if d.Name == "" && d.Table == "" {
		return nil, fmt.Errorf("%w: name or table required", ErrInvalidDefinition)
	}

	if d.Name == "" {
		d.Name = schema.ToCamelCase(d.Table)
	}

	if d.PrimaryKey == "" {
		d.PrimaryKey = "id"
	}

	if d.KeyType == "" {
		d.KeyType = CastInt
		if d.NotIncrementing {
			d.KeyType = CastString
		}
	}

	aliases := make(map[string]string, len(d.ColumnAlias))
	for alias, column := range d.ColumnAlias {
		column = utils.SanitizeName(column)
		if column == "" {
			return nil, fmt.Errorf("%w: alias %q of %s points to an empty column", ErrInvalidDefinition, alias, d.Name)
		}
		aliases[alias] = column
	}
	d.ColumnAlias = aliases

	casts := make(map[string]string, len(d.Casts))
	for key, cast := range d.Casts {
		casts[key] = cast
	}
	d.Casts = casts

	d.Getters = normalizeMutators(d.Getters)
	d.Setters = normalizeMutators(d.Setters)
	d.relations = map[string]RelationFactory{}

	return &d, nil
}

// MustDefine is like Define but panics on invalid definitions
func MustDefine(d Definition) *Definition {
	def, err := Define(d)
	if err != nil {
		panic(err)
	}
	return def
}

func normalizeMutators[T any](mutators map[string]T) map[string]T {
	result := make(map[string]T, len(mutators))
	for name, fn := range mutators {
		result[schema.ToCamelCase(name)] = fn
	}
	return result
}

// TableName returns the declared table or derives it through namer
func (d *Definition) TableName(namer schema.Namer) string {
	if d.Table != "" {
		return d.Table
	}
	return namer.TableName(d.Name)
}

// Incrementing reports whether the database generates the primary key
func (d *Definition) Incrementing() bool {
	return !d.NotIncrementing
}

// CreatedAtColumn column stamped on insert
func (d *Definition) CreatedAtColumn() string {
	return d.Alias("createdAt", "created_at")
}

// UpdatedAtColumn column stamped on every save
func (d *Definition) UpdatedAtColumn() string {
	return d.Alias("updatedAt", "updated_at")
}

// Alias returns the column behind alias, fallback when it isn't declared
func (d *Definition) Alias(alias, fallback string) string {
	if column, ok := d.ColumnAlias[alias]; ok {
		return column
	}
	return fallback
}

// casts returns the cast table including the primary key cast of incrementing keys
func (d *Definition) casts() map[string]string {
	casts := make(map[string]string, len(d.Casts)+1)
	if d.Incrementing() {
		casts[d.PrimaryKey] = d.KeyType
	}
	for key, cast := range d.Casts {
		casts[key] = cast
	}
	return casts
}

// dates returns the date columns, timestamp columns included
func (d *Definition) dates() []string {
	dates := append([]string(nil), d.Dates...)
	if d.Timestamps {
		dates = utils.Unique(append(dates, d.CreatedAtColumn(), d.UpdatedAtColumn()))
	}
	return dates
}

func (d *Definition) isHidden(key string) bool {
	return utils.Contains(d.Hidden, key)
}

func (d *Definition) getter(key string) (GetMutator, bool) {
	fn, ok := d.Getters[schema.ToCamelCase(key)]
	return fn, ok
}

func (d *Definition) setter(key string) (SetMutator, bool) {
	fn, ok := d.Setters[schema.ToCamelCase(key)]
	return fn, ok
}

// declares reports whether key is known to the definition without being stored
func (d *Definition) declares(key string) bool {
	if key == d.PrimaryKey || utils.Contains(d.Columns, key) || utils.Contains(d.dates(), key) {
		return true
	}
	if _, ok := d.Casts[key]; ok {
		return true
	}
	for _, column := range d.ColumnAlias {
		if column == key {
			return true
		}
	}
	return false
}

// Relation registers a relation factory under name
func (d *Definition) Relation(name string, factory RelationFactory) *Definition {
	if d.relations == nil {
		d.relations = map[string]RelationFactory{}
	}
	d.relations[name] = factory
	return d
}

// HasOne declares a one to one relation, the foreign key lives on related.
// An empty foreignKey defaults to the singular parent table followed by "_id", an empty localKey to the parent key
func (d *Definition) HasOne(name string, related *Definition, foreignKey, localKey string) *Definition {
	return d.Relation(name, func(parent *Model, constrained bool) Relation {
		fk, lk := hasOneOrManyKeys(parent, foreignKey, localKey)
		return NewHasOne(name, parent, related, fk, lk, constrained)
	})
}

// HasMany declares a one to many relation, keys default as in HasOne
func (d *Definition) HasMany(name string, related *Definition, foreignKey, localKey string) *Definition {
	return d.Relation(name, func(parent *Model, constrained bool) Relation {
		fk, lk := hasOneOrManyKeys(parent, foreignKey, localKey)
		return NewHasMany(name, parent, related, fk, lk, constrained)
	})
}

// BelongsTo declares the inverse of HasOne/HasMany, the foreign key lives on this side.
// An empty foreignKey defaults to the relation name followed by the related key, "author" => "author_id"
func (d *Definition) BelongsTo(name string, related *Definition, foreignKey, ownerKey string) *Definition {
	return d.Relation(name, func(parent *Model, constrained bool) Relation {
		fk, ok := foreignKey, ownerKey
		if ok == "" {
			ok = related.PrimaryKey
		}
		if fk == "" {
			fk = parent.db.NamingStrategy.BelongsToKeyName(name, related.PrimaryKey)
		}
		return NewBelongsTo(name, parent, related, fk, ok, constrained)
	})
}

func hasOneOrManyKeys(parent *Model, foreignKey, localKey string) (string, string) {
	if foreignKey == "" {
		foreignKey = parent.db.NamingStrategy.ForeignKeyName(parent.Table())
	}
	if localKey == "" {
		localKey = parent.PrimaryKey()
	}
	return foreignKey, localKey
}

// HasRelation reports whether name is registered
func (d *Definition) HasRelation(name string) bool {
	_, ok := d.relations[name]
	return ok
}

// RelationNames returns the registered relation names, sorted
func (d *Definition) RelationNames() []string {
	names := make([]string, 0, len(d.relations))
	for name := range d.relations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Definition) relation(name string) (RelationFactory, error) {
	factory, ok := d.relations[name]
	if !ok {
		return nil, fmt.Errorf("%w: call to undefined relationship %q on model %s", ErrRelationNotFound, name, d.Name)
	}
	return factory, nil
}

// New creates a model bound to db, attributes go through Set
func (d *Definition) New(db *DB, attributes map[string]interface{}) (*Model, error) {
	if db == nil {
		return nil, ErrMissingDriver
	}

	m := d.newInstance(db)
	if err := m.SetAttributes(attributes); err != nil {
		return nil, err
	}
	return m, nil
}

// Query starts a query on the table of d, default eager loads included
func (d *Definition) Query(db *DB) *Query {
	q := newQuery(db, d)
	if len(d.With) > 0 {
		q = q.With(d.With...)
	}
	return q
}

func (d *Definition) String() string {
	return strings.TrimSpace(d.Name)
}
