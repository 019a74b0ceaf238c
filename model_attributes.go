package entity

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/go-entity/entity/utils"
)

// Set writes an attribute. A setter mutator owns the write when registered, otherwise dates are
// converted to the storage format, JSON casts are encoded and "column->path" keys update a nested
// value inside a JSON column
func (m *Model) Set(name string, value interface{}) error {
	head, path, nested := utils.SplitPath(name)
	key := m.ColumnAlias(head)
	if nested {
		key = key + utils.PathSeparator + path
	}

	if setter, ok := m.def.setter(key); ok {
		return setter(m, ValueOf(value))
	}

	if !m.knows(m.ColumnAlias(head), true) {
		return fmt.Errorf("%w: %s has no attribute %q", ErrAttributeNotFound, m.def.Name, name)
	}

	v := ValueOf(value)
	if nested {
		return m.SetJSONPath(m.ColumnAlias(head), path, v)
	}

	if v.Bool() && m.attributes.IsDate(key) {
		converted, err := m.attributes.FromDateTime(v)
		if err != nil {
			return fmt.Errorf("set %s.%s: %w", m.def.Name, key, err)
		}
		v = converted
	}

	if !v.IsNull() && m.attributes.IsJSONCastable(key) {
		encoded, err := asJSON(v)
		if err != nil {
			return &JSONEncodingError{Model: m.def.Name, Attribute: key, Err: err}
		}
		v = encoded
	}

	m.attributes.SetRaw(key, v)
	return nil
}

// SetAttributes sets every attribute through Set, in key order
func (m *Model) SetAttributes(attributes map[string]interface{}) error {
	keys := make([]string, 0, len(attributes))
	for key := range attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := m.Set(key, attributes[key]); err != nil {
			return err
		}
	}
	return nil
}

// SetRaw stores value under key bypassing mutators, casts and validation
func (m *Model) SetRaw(key string, value interface{}) {
	m.attributes.SetRaw(key, ValueOf(value))
}

// SetJSONPath decodes the JSON column key, assigns value at path ("address->city") and stores it back encoded
func (m *Model) SetJSONPath(key, path string, value interface{}) error {
	data := map[string]interface{}{}
	if raw, ok := m.attributes.GetRaw(key); ok && !raw.IsNull() {
		decoded, err := fromJSON(raw)
		if err != nil {
			return fmt.Errorf("set %s.%s->%s: %w", m.def.Name, key, path, err)
		}
		if current := decoded.Map(); current != nil {
			data = current
		}
	}

	v := ValueOf(value)
	if v.kind == KindModel || v.kind == KindCollection {
		return &JSONEncodingError{Model: m.def.Name, Attribute: key, Err: fmt.Errorf("%w: %s", ErrInvalidArgument, v.kind)}
	}

	data = utils.SetPath(data, path, v.Interface())
	encoded, err := json.Marshal(data)
	if err != nil {
		return &JSONEncodingError{Model: m.def.Name, Attribute: key, Err: err}
	}

	m.attributes.SetRaw(key, Value{KindString, string(encoded)})
	return nil
}

// GetRaw returns the stored value of key, the second result is false when it was never set
func (m *Model) GetRaw(key string) (Value, bool) {
	return m.attributes.GetRaw(m.ColumnAlias(key))
}

// GetValue resolves key through its getter mutator, its cast or its date conversion, in that order
func (m *Model) GetValue(key string) (Value, error) {
	raw, _ := m.attributes.GetRaw(key)

	if getter, ok := m.def.getter(key); ok {
		return getter(m, raw)
	}

	if m.attributes.HasCast(key) {
		v, err := m.attributes.Cast(key, raw)
		if err != nil {
			return Null(), fmt.Errorf("get %s.%s: %w", m.def.Name, key, err)
		}
		return v, nil
	}

	if !raw.IsNull() && m.attributes.inDates(key) {
		t, err := m.attributes.AsDateTime(raw)
		if err != nil {
			return Null(), fmt.Errorf("get %s.%s: %w", m.def.Name, key, err)
		}
		return Value{KindTime, t}, nil
	}

	return raw, nil
}

// Get returns an attribute or a loaded relation. Declared relations that were not loaded give
// ErrRelationNotLoaded, names unknown to the model give ErrAttributeNotFound
func (m *Model) Get(name string) (Value, error) {
	key := m.ColumnAlias(name)

	if m.attributes.Has(key) {
		return m.GetValue(key)
	}

	if _, ok := m.def.getter(name); ok {
		return m.GetValue(name)
	}

	if v, ok := m.relations.Get(name); ok {
		return v, nil
	}

	if m.def.HasRelation(name) {
		return Null(), fmt.Errorf("%w: %s.%s, use Load or With", ErrRelationNotLoaded, m.def.Name, name)
	}

	if m.knows(key, false) {
		return m.GetValue(key)
	}

	return Null(), fmt.Errorf("%w: %s has no attribute %q", ErrAttributeNotFound, m.def.Name, name)
}

// knows reports whether key can be stored on m, forWrite also accepts any key on new models without declared columns
func (m *Model) knows(key string, forWrite bool) bool {
	if m.attributes.Has(key) || m.def.declares(key) {
		return true
	}
	return forWrite && !m.exists && len(m.def.Columns) == 0
}

// Attributes returns every stored attribute processed for output: dates serialized in the storage
// format, getters applied and casts resolved
func (m *Model) Attributes() (map[string]interface{}, error) {
	values, err := m.processedAttributes()
	if err != nil {
		return nil, err
	}

	result := make(map[string]interface{}, len(values))
	for key, value := range values {
		result[key] = value.Interface()
	}
	return result, nil
}

func (m *Model) processedAttributes() (map[string]Value, error) {
	attributes := m.attributes.RawAttributes()

	for _, key := range m.attributes.dates {
		if value, ok := attributes[key]; !ok || value.IsNull() {
			continue
		}
		t, err := m.attributes.AsDateTime(attributes[key])
		if err != nil {
			return nil, fmt.Errorf("serialize %s.%s: %w", m.def.Name, key, err)
		}
		// zero dates such as "0000-00-00 00:00:00" are kept as stored
		if !t.IsZero() {
			attributes[key] = Value{KindString, m.attributes.SerializeDate(t)}
		}
	}

	mutated := map[string]bool{}
	for key := range attributes {
		getter, ok := m.def.getter(key)
		if !ok {
			continue
		}
		value, err := getter(m, attributes[key])
		if err != nil {
			return nil, err
		}
		attributes[key] = value
		mutated[key] = true
	}

	for key := range m.attributes.casts {
		value, ok := attributes[key]
		if !ok || mutated[key] {
			continue
		}

		cast, err := m.attributes.Cast(key, value)
		if err != nil {
			return nil, fmt.Errorf("serialize %s.%s: %w", m.def.Name, key, err)
		}

		if cast.kind == KindTime {
			switch m.attributes.CastType(key) {
			case CastCustomDateTime:
				cast = Value{KindString, cast.Time().Format(m.attributes.customDateFormat(key))}
			case CastDate, CastDateTime:
				cast = Value{KindString, m.attributes.SerializeDate(cast.Time())}
			}
		}
		attributes[key] = cast
	}

	return attributes, nil
}

// RawAttributes returns a copy of the stored values
func (m *Model) RawAttributes() map[string]Value {
	return m.attributes.RawAttributes()
}

// Original returns the values of the last sync
func (m *Model) Original() map[string]Value {
	return m.attributes.Original()
}

// Dirty returns the attributes changed since the last sync
func (m *Model) Dirty() map[string]Value {
	return m.attributes.Dirty()
}

// IsDirty reports whether any attribute, or any of keys, changed since the last sync
func (m *Model) IsDirty(keys ...string) bool {
	return m.attributes.IsDirty(keys...)
}

// SyncOriginal snapshots the current attributes as persisted
func (m *Model) SyncOriginal() {
	m.attributes.SyncOriginal()
}

// SyncOriginalAttribute snapshots a single attribute
func (m *Model) SyncOriginalAttribute(key string) {
	m.attributes.SyncOriginalAttribute(key)
}

// ToArray returns the processed attributes merged with the loaded relations, hidden attributes excluded
func (m *Model) ToArray() (map[string]interface{}, error) {
	attributes, err := m.processedAttributes()
	if err != nil {
		return nil, err
	}

	result := make(map[string]interface{}, len(attributes)+m.relations.Len())
	for key, value := range attributes {
		if m.def.isHidden(key) {
			continue
		}
		result[key] = value.Interface()
	}

	for name, value := range m.relations.All() {
		if m.def.isHidden(name) {
			continue
		}

		switch value.Kind() {
		case KindModel:
			nested, err := value.Model().ToArray()
			if err != nil {
				return nil, err
			}
			result[name] = nested
		case KindCollection:
			nested, err := value.Collection().ToArray()
			if err != nil {
				return nil, err
			}
			result[name] = nested
		default:
			result[name] = value.Interface()
		}
	}

	return result, nil
}

// ToJSON encodes ToArray as JSON
func (m *Model) ToJSON() (string, error) {
	data, err := m.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MarshalJSON implements json.Marshaler
func (m *Model) MarshalJSON() ([]byte, error) {
	array, err := m.ToArray()
	if err != nil {
		return nil, err
	}

	if path, ok := invalidUTF8(array); ok {
		return nil, &JSONEncodingError{Model: m.def.Name, Attribute: path, Err: ErrMalformedUTF8}
	}

	data, err := json.Marshal(array)
	if err != nil {
		return nil, &JSONEncodingError{Model: m.def.Name, Err: err}
	}
	return data, nil
}

// invalidUTF8 finds the first string in value that isn't valid UTF-8 and returns its
// dotted path. encoding/json would replace the bytes with U+FFFD instead of failing.
func invalidUTF8(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return "", !utf8.ValidString(v)
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if !utf8.ValidString(key) {
				return key, true
			}
			if path, ok := invalidUTF8(v[key]); ok {
				return joinPath(key, path), true
			}
		}
	case []map[string]interface{}:
		for i, item := range v {
			if path, ok := invalidUTF8(item); ok {
				return joinPath(strconv.Itoa(i), path), true
			}
		}
	case []interface{}:
		for i, item := range v {
			if path, ok := invalidUTF8(item); ok {
				return joinPath(strconv.Itoa(i), path), true
			}
		}
	case []string:
		for i, item := range v {
			if !utf8.ValidString(item) {
				return strconv.Itoa(i), true
			}
		}
	}
	return "", false
}

func joinPath(key, path string) string {
	if path == "" {
		return key
	}
	return key + "." + path
}

// EncodeMsgpack implements msgpack.CustomEncoder, the payload is ToArray
func (m *Model) EncodeMsgpack(enc *msgpack.Encoder) error {
	array, err := m.ToArray()
	if err != nil {
		return err
	}
	return enc.Encode(array)
}
