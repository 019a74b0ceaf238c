package entity

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/go-entity/entity/utils"
)

// Model is one row of the table of its Definition
type Model struct {
	def        *Definition
	db         *DB
	attributes *AttributeStore
	relations  *RelationSet
	timestamps TimestampPolicy
	exists     bool
}

func (d *Definition) newInstance(db *DB) *Model {
	format := d.DateFormat
	if format == "" && db != nil {
		format = db.dateFormat()
	}

	return &Model{
		def:        d,
		db:         db,
		attributes: NewAttributeStore(d.casts(), d.dates(), format),
		relations:  newRelationSet(),
		timestamps: newTimestampPolicy(d, db),
	}
}

// Definition returns the definition m was created from
func (m *Model) Definition() *Definition {
	return m.def
}

// DB returns the db m is bound to
func (m *Model) DB() *DB {
	return m.db
}

// Exists reports whether m was loaded from, or persisted to, the database
func (m *Model) Exists() bool {
	return m.exists
}

// Store returns the attribute store of m
func (m *Model) Store() *AttributeStore {
	return m.attributes
}

// Table name of m
func (m *Model) Table() string {
	return m.def.TableName(m.db.NamingStrategy)
}

// PrimaryKey column name of the primary key
func (m *Model) PrimaryKey() string {
	return m.def.PrimaryKey
}

// KeyType cast type of the primary key
func (m *Model) KeyType() string {
	return m.def.KeyType
}

// Incrementing reports whether the database generates the primary key
func (m *Model) Incrementing() bool {
	return m.def.Incrementing()
}

// PrimaryKeyValue returns the cast primary key, null when unset
func (m *Model) PrimaryKeyValue() Value {
	value, err := m.GetValue(m.PrimaryKey())
	if err != nil {
		raw, _ := m.attributes.GetRaw(m.PrimaryKey())
		return raw
	}
	return value
}

// QualifyColumn prefixes column with the table name unless it is already qualified
func (m *Model) QualifyColumn(column string) string {
	if strings.Contains(column, ".") {
		return column
	}
	return m.Table() + "." + column
}

// QualifiedPrimaryKey returns "table.primary_key"
func (m *Model) QualifiedPrimaryKey() string {
	return m.QualifyColumn(m.PrimaryKey())
}

// ColumnAlias returns the column declared for alias, or alias itself sanitized
func (m *Model) ColumnAlias(alias string) string {
	if column, ok := m.def.ColumnAlias[alias]; ok {
		return column
	}
	return utils.SanitizeName(alias)
}

// NewQuery starts a query on the table of m, default eager loads included
func (m *Model) NewQuery() *Query {
	return m.def.Query(m.db)
}

func (m *Model) newQueryWithoutRelationships() *Query {
	return newQuery(m.db, m.def)
}

// NewInstance creates a model of the same definition bound to the same db
func (m *Model) NewInstance(attributes map[string]interface{}) (*Model, error) {
	return m.def.New(m.db, attributes)
}

// Save inserts new models and updates existing ones, only dirty attributes are written
func (m *Model) Save() (bool, error) {
	var (
		saved bool
		wrote bool
		err   error
		query = m.newQueryWithoutRelationships()
	)

	if m.exists {
		saved = true
		if m.attributes.IsDirty() {
			wrote = true
			saved, err = m.performUpdate(query)
		}
	} else {
		saved, err = m.performInsert(query)
		wrote = m.exists
	}

	if err != nil || !saved {
		return saved, err
	}

	// owners are only touched when a row was written
	if wrote {
		if err := m.TouchOwners(); err != nil {
			return false, err
		}
	}

	m.attributes.SyncOriginal()
	return true, nil
}

// Update sets attributes and saves the model, it reports false for models that don't exist
func (m *Model) Update(attributes map[string]interface{}) (bool, error) {
	if !m.exists {
		return false, nil
	}

	if err := m.SetAttributes(attributes); err != nil {
		return false, err
	}
	return m.Save()
}

func (m *Model) performInsert(query *Query) (bool, error) {
	if m.UsesTimestamps() {
		if err := m.updateTimestamps(); err != nil {
			return false, err
		}
	}

	if !m.Incrementing() && m.KeyType() == CastUUID && !m.hasPrimaryKeyValue() {
		m.attributes.SetRaw(m.PrimaryKey(), ValueOf(uuid.NewString()))
	}

	if m.attributes.Len() == 0 {
		return true, nil
	}

	if err := query.insert(m); err != nil {
		return false, err
	}

	m.exists = true
	return true, nil
}

func (m *Model) performUpdate(query *Query) (bool, error) {
	if m.attributes.Len() == 0 {
		return true, nil
	}

	if !m.hasPrimaryKeyValue() {
		return false, fmt.Errorf("%w: can't update %s without %s", ErrPrimaryKeyRequired, m.def.Name, m.PrimaryKey())
	}

	if m.UsesTimestamps() {
		if err := m.updateTimestamps(); err != nil {
			return false, err
		}
	}

	if _, err := query.update(m); err != nil {
		return false, err
	}
	return true, nil
}

// Delete deletes the row of m, or the row identified by key when given.
// Models that don't exist report false unless a key is given
func (m *Model) Delete(key ...interface{}) (bool, error) {
	if len(key) > 0 {
		m.attributes.SetRaw(m.PrimaryKey(), ValueOf(key[0]))
	} else if !m.exists {
		return false, nil
	}

	if !m.hasPrimaryKeyValue() {
		return false, fmt.Errorf("%w: can't delete %s without %s", ErrPrimaryKeyRequired, m.def.Name, m.PrimaryKey())
	}

	if err := m.TouchOwners(); err != nil {
		return false, err
	}

	if _, err := m.newQueryWithoutRelationships().delete(m); err != nil {
		return false, err
	}

	m.exists = false
	return true, nil
}

// Increment adds amount to column, lazy only changes the attribute without saving
func (m *Model) Increment(column string, amount int64, lazy bool) (bool, error) {
	return m.incrementOrDecrement(column, amount, lazy)
}

// Decrement subtracts amount from column, lazy only changes the attribute without saving
func (m *Model) Decrement(column string, amount int64, lazy bool) (bool, error) {
	return m.incrementOrDecrement(column, -amount, lazy)
}

func (m *Model) incrementOrDecrement(column string, amount int64, lazy bool) (bool, error) {
	current, err := m.Get(column)
	if err != nil {
		return false, err
	}

	var next interface{}
	if current.Kind() == KindFloat {
		next = current.Float() + float64(amount)
	} else {
		next = current.Int() + amount
	}

	if err := m.Set(column, next); err != nil {
		return false, err
	}

	if lazy {
		return true, nil
	}

	if m.exists {
		return m.Update(nil)
	}
	return m.Save()
}

// Is reports whether other is the same row: same driver, same table and same primary key
func (m *Model) Is(other *Model) bool {
	if m == nil || other == nil {
		return false
	}

	key, otherKey := m.PrimaryKeyValue(), other.PrimaryKeyValue()
	return !key.IsNull() && looseEqual(key, otherKey) &&
		m.Table() == other.Table() &&
		sameDriver(m.db, other.db)
}

func sameDriver(a, b *DB) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Driver == nil || b.Driver == nil {
		return a.Driver == b.Driver
	}
	if !reflect.TypeOf(a.Driver).Comparable() || !reflect.TypeOf(b.Driver).Comparable() {
		return false
	}
	return a.Driver == b.Driver
}

func (m *Model) hasPrimaryKeyValue() bool {
	raw, ok := m.attributes.GetRaw(m.PrimaryKey())
	return ok && !raw.IsNull() && raw.String() != ""
}

func (m *Model) String() string {
	return fmt.Sprintf("%s(%s=%s)", m.def.Name, m.PrimaryKey(), m.PrimaryKeyValue().String())
}
