package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValueOf(t *testing.T) {
	var nilInt *int

	tests := []struct {
		name string
		in   interface{}
		kind Kind
		want interface{}
	}{
		{"nil", nil, KindNull, nil},
		{"nil pointer", nilInt, KindNull, nil},
		{"int", 3, KindInt, int64(3)},
		{"uint8", uint8(7), KindInt, int64(7)},
		{"float32", float32(1.5), KindFloat, 1.5},
		{"bytes", []byte("abc"), KindString, "abc"},
		{"json number", json.Number("12"), KindInt, int64(12)},
		{"strings", []string{"a", "b"}, KindSlice, []interface{}{"a", "b"}},
		{"int map", map[int]string{1: "a"}, KindMap, map[string]interface{}{"1": "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValueOf(tt.in)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.want, v.Interface())
		})
	}

	assert.Equal(t, ValueOf(2), ValueOf(ValueOf(2)), "values should not be wrapped twice")
}

func TestLooseEqual(t *testing.T) {
	at := time.Date(2010, 2, 13, 0, 34, 42, 0, time.UTC)

	tests := []struct {
		a, b interface{}
		want bool
	}{
		{"1", 1, true},
		{"1.0", int64(1), true},
		{1.5, "1.5", true},
		{"abc", "abc", true},
		{"abc", "ABC", false},
		{"01", "1", false},
		{nil, "", false},
		{nil, nil, true},
		{true, "1", true},
		{0, false, true},
		{at, at.In(time.Local), true},
		{map[string]interface{}{"a": 1}, map[string]interface{}{"a": 1}, true},
		{42, "forty two", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValueOf(tt.a).Equal(ValueOf(tt.b)), "%#v == %#v", tt.a, tt.b)
	}
}

func TestValueConversions(t *testing.T) {
	assert.Equal(t, "1.5", ValueOf(1.5).String())
	assert.Equal(t, "", Null().String())
	assert.Equal(t, int64(42), ValueOf(" 42 ").Int())
	assert.Equal(t, int64(0), ValueOf("42abc").Int())
	assert.False(t, ValueOf("0").Bool())
	assert.True(t, ValueOf("false").Bool())
	assert.False(t, ValueOf([]interface{}{}).Bool())

	stored, err := ValueOf(map[string]interface{}{"test": "Object"}).Value()
	assert.NoError(t, err)
	assert.Equal(t, `{"test":"Object"}`, stored)

	_, err = ValueOf(NewCollection()).Value()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, "collection", KindCollection.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
