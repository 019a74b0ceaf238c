package entity

import (
	"sort"
)

// AttributeStore holds the raw column values of a model next to the snapshot taken at the last sync
type AttributeStore struct {
	raw        map[string]Value
	original   map[string]Value
	casts      map[string]string
	dates      []string
	dateFormat string
}

// NewAttributeStore creates an empty store, casts maps attribute names to cast types
func NewAttributeStore(casts map[string]string, dates []string, dateFormat string) *AttributeStore {
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	return &AttributeStore{
		raw:        map[string]Value{},
		original:   map[string]Value{},
		casts:      casts,
		dates:      dates,
		dateFormat: dateFormat,
	}
}

// SetRaw stores v under key without any conversion
func (s *AttributeStore) SetRaw(key string, v Value) {
	s.raw[key] = v
}

// GetRaw returns the stored value, the second result is false when key was never set
func (s *AttributeStore) GetRaw(key string) (Value, bool) {
	v, ok := s.raw[key]
	return v, ok
}

// Has reports whether key was set
func (s *AttributeStore) Has(key string) bool {
	_, ok := s.raw[key]
	return ok
}

// Unset removes key from the raw attributes
func (s *AttributeStore) Unset(key string) {
	delete(s.raw, key)
}

// Len number of raw attributes
func (s *AttributeStore) Len() int {
	return len(s.raw)
}

// Keys returns the raw attribute names, sorted
func (s *AttributeStore) Keys() []string {
	keys := make([]string, 0, len(s.raw))
	for key := range s.raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SetRawAttributes replaces every raw attribute, sync also takes the original snapshot
func (s *AttributeStore) SetRawAttributes(attributes map[string]interface{}, sync bool) {
	s.raw = make(map[string]Value, len(attributes))
	for key, value := range attributes {
		s.raw[key] = ValueOf(value)
	}

	if sync {
		s.SyncOriginal()
	}
}

// RawAttributes returns a copy of the raw attributes
func (s *AttributeStore) RawAttributes() map[string]Value {
	return copyValues(s.raw)
}

// Original returns a copy of the snapshot taken at the last sync
func (s *AttributeStore) Original() map[string]Value {
	return copyValues(s.original)
}

// SyncOriginal snapshots the raw attributes
func (s *AttributeStore) SyncOriginal() {
	s.original = copyValues(s.raw)
}

// SyncOriginalAttribute snapshots a single raw attribute
func (s *AttributeStore) SyncOriginalAttribute(key string) {
	if v, ok := s.raw[key]; ok {
		s.original[key] = v
	} else {
		delete(s.original, key)
	}
}

// Dirty returns the raw attributes that differ, loosely, from the snapshot or are missing from it
func (s *AttributeStore) Dirty() map[string]Value {
	dirty := map[string]Value{}
	for key, value := range s.raw {
		if original, ok := s.original[key]; !ok || !looseEqual(original, value) {
			dirty[key] = value
		}
	}
	return dirty
}

// IsDirty reports whether any attribute changed, or any of keys when given
func (s *AttributeStore) IsDirty(keys ...string) bool {
	dirty := s.Dirty()
	if len(keys) == 0 {
		return len(dirty) > 0
	}

	for _, key := range keys {
		if _, ok := dirty[key]; ok {
			return true
		}
	}
	return false
}

// Casts returns a copy of the cast table
func (s *AttributeStore) Casts() map[string]string {
	casts := make(map[string]string, len(s.casts))
	for key, value := range s.casts {
		casts[key] = value
	}
	return casts
}

// HasCast reports whether key is cast, restricted to one of types when given
func (s *AttributeStore) HasCast(key string, types ...string) bool {
	if _, ok := s.casts[key]; !ok {
		return false
	}
	if len(types) == 0 {
		return true
	}

	castType := s.CastType(key)
	for _, t := range types {
		if castType == t {
			return true
		}
	}
	return false
}

// Dates returns the attributes treated as dates without an explicit cast
func (s *AttributeStore) Dates() []string {
	return append([]string(nil), s.dates...)
}

// IsDate reports whether key is a date column or is cast to a date
func (s *AttributeStore) IsDate(key string) bool {
	return s.inDates(key) || s.HasCast(key, CastDate, CastDateTime)
}

// IsJSONCastable reports whether key is stored as JSON
func (s *AttributeStore) IsJSONCastable(key string) bool {
	return s.HasCast(key, CastArray, CastJSON, CastObject)
}

// DateFormat storage format of date attributes
func (s *AttributeStore) DateFormat() string {
	return s.dateFormat
}

func (s *AttributeStore) inDates(key string) bool {
	for _, date := range s.dates {
		if date == key {
			return true
		}
	}
	return false
}

func copyValues(values map[string]Value) map[string]Value {
	result := make(map[string]Value, len(values))
	for key, value := range values {
		result[key] = value
	}
	return result
}
