package entity

import (
	"encoding/json"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/go-entity/entity/utils"
)

// Collection ordered list of models
type Collection struct {
	models []*Model
}

// NewCollection creates a collection holding models
func NewCollection(models ...*Model) *Collection {
	return &Collection{models: append([]*Model(nil), models...)}
}

// Add appends models
func (c *Collection) Add(models ...*Model) *Collection {
	c.models = append(c.models, models...)
	return c
}

// All returns the models
func (c *Collection) All() []*Model {
	if c == nil {
		return nil
	}
	return c.models
}

// Len number of models
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.models)
}

// IsEmpty reports whether c holds no model
func (c *Collection) IsEmpty() bool {
	return c.Len() == 0
}

// Get returns the model at index idx
func (c *Collection) Get(idx int) (*Model, bool) {
	if idx < 0 || idx >= c.Len() {
		return nil, false
	}
	return c.models[idx], true
}

// First returns the first model, the error result lets queries return it directly
func (c *Collection) First() (*Model, bool, error) {
	m, ok := c.Get(0)
	return m, ok, nil
}

// Find returns the model whose primary key loosely equals key, key may be a *Model
func (c *Collection) Find(key interface{}) (*Model, bool) {
	if other, ok := key.(*Model); ok {
		for _, m := range c.All() {
			if m.Is(other) {
				return m, true
			}
		}
		return nil, false
	}

	value := ValueOf(key)
	for _, m := range c.All() {
		if looseEqual(rawKey(m, m.PrimaryKey()), value) {
			return m, true
		}
	}
	return nil, false
}

// Contains reports whether the model with key is in c
func (c *Collection) Contains(key interface{}) bool {
	_, ok := c.Find(key)
	return ok
}

// Sort sorts the models in place, keeping the order of equal ones
func (c *Collection) Sort(less func(a, b *Model) bool) *Collection {
	sort.SliceStable(c.models, func(i, j int) bool {
		return less(c.models[i], c.models[j])
	})
	return c
}

// Replace replaces the model at idx
func (c *Collection) Replace(idx int, m *Model) bool {
	if idx < 0 || idx >= c.Len() {
		return false
	}
	c.models[idx] = m
	return true
}

// Filter returns a new collection of the models keep accepts
func (c *Collection) Filter(keep func(*Model) bool) *Collection {
	result := NewCollection()
	for _, m := range c.All() {
		if keep(m) {
			result.Add(m)
		}
	}
	return result
}

// Each calls fn on every model, stopping at the first error
func (c *Collection) Each(fn func(*Model) error) error {
	for _, m := range c.All() {
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the distinct primary keys in order
func (c *Collection) Keys() []interface{} {
	var (
		keys []interface{}
		seen = map[string]bool{}
	)
	for _, m := range c.All() {
		key := rawKey(m, m.PrimaryKey())
		if id := utils.ToStringKey(key); !seen[id] {
			seen[id] = true
			keys = append(keys, key.Interface())
		}
	}
	return keys
}

// Load eager loads relations onto every model of c
func (c *Collection) Load(relations ...string) error {
	if c.IsEmpty() {
		return nil
	}

	first := c.models[0]
	query := first.newQueryWithoutRelationships().With(relations...)
	if query.Error != nil {
		return query.Error
	}
	return query.eagerLoadRelations(c.models)
}

// ToArray returns the ToArray of every model
func (c *Collection) ToArray() ([]map[string]interface{}, error) {
	result := make([]map[string]interface{}, 0, c.Len())
	for _, m := range c.All() {
		array, err := m.ToArray()
		if err != nil {
			return nil, err
		}
		result = append(result, array)
	}
	return result, nil
}

// ToJSON encodes ToArray as JSON
func (c *Collection) ToJSON() (string, error) {
	data, err := c.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MarshalJSON implements json.Marshaler
func (c *Collection) MarshalJSON() ([]byte, error) {
	array, err := c.ToArray()
	if err != nil {
		return nil, err
	}

	for i, item := range array {
		if path, ok := invalidUTF8(item); ok {
			return nil, &JSONEncodingError{Model: c.All()[i].def.Name, Attribute: path, Err: ErrMalformedUTF8}
		}
	}
	return json.Marshal(array)
}

// EncodeMsgpack implements msgpack.CustomEncoder
func (c *Collection) EncodeMsgpack(enc *msgpack.Encoder) error {
	array, err := c.ToArray()
	if err != nil {
		return err
	}
	return enc.Encode(array)
}
