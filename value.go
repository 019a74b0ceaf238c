package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-entity/entity/utils"
)

// Kind of the value held by a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindMap
	KindSlice
	KindTime
	KindModel
	KindCollection
)

var kindNames = [...]string{"null", "int", "float", "string", "bool", "map", "slice", "time", "model", "collection"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged union over the attribute types a model can hold
type Value struct {
	kind Kind
	v    interface{}
}

// Null returns the null Value
func Null() Value {
	return Value{}
}

// ValueOf wraps v, normalizing integers to int64, floats to float64 and []byte to string
func ValueOf(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case *Value:
		if x == nil {
			return Value{}
		}
		return *x
	case string:
		return Value{KindString, x}
	case []byte:
		if x == nil {
			return Value{}
		}
		return Value{KindString, string(x)}
	case bool:
		return Value{KindBool, x}
	case int:
		return Value{KindInt, int64(x)}
	case int8:
		return Value{KindInt, int64(x)}
	case int16:
		return Value{KindInt, int64(x)}
	case int32:
		return Value{KindInt, int64(x)}
	case int64:
		return Value{KindInt, x}
	case uint:
		return Value{KindInt, int64(x)}
	case uint8:
		return Value{KindInt, int64(x)}
	case uint16:
		return Value{KindInt, int64(x)}
	case uint32:
		return Value{KindInt, int64(x)}
	case uint64:
		return Value{KindInt, int64(x)}
	case float32:
		return Value{KindFloat, float64(x)}
	case float64:
		return Value{KindFloat, x}
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Value{KindInt, i}
		}
		f, _ := x.Float64()
		return Value{KindFloat, f}
	case time.Time:
		return Value{KindTime, x}
	case *time.Time:
		if x == nil {
			return Value{}
		}
		return Value{KindTime, *x}
	case map[string]interface{}:
		return Value{KindMap, x}
	case []interface{}:
		return Value{KindSlice, x}
	case *Model:
		if x == nil {
			return Value{}
		}
		return Value{KindModel, x}
	case *Collection:
		if x == nil {
			return Value{}
		}
		return Value{KindCollection, x}
	case driver.Valuer:
		rv := reflect.ValueOf(x)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return Value{}
		}
		dv, err := x.Value()
		if err != nil {
			return Value{KindString, fmt.Sprint(x)}
		}
		return ValueOf(dv)
	case fmt.Stringer:
		return Value{KindString, x.String()}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return Value{}
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.String:
		return Value{KindString, rv.String()}
	case reflect.Bool:
		return Value{KindBool, rv.Bool()}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Value{KindInt, rv.Int()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Value{KindInt, int64(rv.Uint())}
	case reflect.Float32, reflect.Float64:
		return Value{KindFloat, rv.Float()}
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Value{}
		}
		items := make([]interface{}, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return Value{KindSlice, items}
	case reflect.Map:
		if rv.IsNil() {
			return Value{}
		}
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		return Value{KindMap, m}
	}

	return Value{KindString, fmt.Sprint(v)}
}

// Kind returns the kind of the held value
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v holds nothing
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Interface returns the held value, nil for null
func (v Value) Interface() interface{} {
	return v.v
}

// Int converts the held value to an integer, strings are parsed and non numeric values give 0
func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.v.(int64)
	case KindFloat:
		return int64(v.v.(float64))
	case KindBool:
		if v.v.(bool) {
			return 1
		}
	case KindString:
		s := strings.TrimSpace(v.v.(string))
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
	case KindTime:
		return v.v.(time.Time).Unix()
	}
	return 0
}

// Float converts the held value to a floating point number
func (v Value) Float() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.v.(int64))
	case KindFloat:
		return v.v.(float64)
	case KindBool:
		if v.v.(bool) {
			return 1
		}
	case KindString:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.v.(string)), 64); err == nil {
			return f
		}
	}
	return 0
}

// String converts the held value to a string, null gives ""
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.v.(string)
	case KindInt:
		return strconv.FormatInt(v.v.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(v.v.(float64), 'f', -1, 64)
	case KindBool:
		if v.v.(bool) {
			return "1"
		}
		return ""
	case KindTime:
		return v.v.(time.Time).Format(DefaultDateFormat)
	case KindMap, KindSlice:
		if data, err := json.Marshal(v.v); err == nil {
			return string(data)
		}
	case KindModel:
		if data, err := v.v.(*Model).ToJSON(); err == nil {
			return data
		}
	case KindCollection:
		if data, err := json.Marshal(v.v); err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v.v)
}

// Bool converts the held value to a boolean following the usual truthiness rules
func (v Value) Bool() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.v.(bool)
	case KindInt:
		return v.v.(int64) != 0
	case KindFloat:
		return v.v.(float64) != 0
	case KindString:
		s := v.v.(string)
		return s != "" && s != "0"
	case KindMap:
		return len(v.v.(map[string]interface{})) > 0
	case KindSlice:
		return len(v.v.([]interface{})) > 0
	case KindTime:
		return !v.v.(time.Time).IsZero()
	case KindCollection:
		return v.v.(*Collection).Len() > 0
	}
	return true
}

// Map returns the held map, nil for other kinds
func (v Value) Map() map[string]interface{} {
	m, _ := v.v.(map[string]interface{})
	return m
}

// Slice returns the held slice, nil for other kinds
func (v Value) Slice() []interface{} {
	s, _ := v.v.([]interface{})
	return s
}

// Time returns the held time, the zero time for other kinds
func (v Value) Time() time.Time {
	t, _ := v.v.(time.Time)
	return t
}

// Model returns the held model, nil for other kinds
func (v Value) Model() *Model {
	m, _ := v.v.(*Model)
	return m
}

// Collection returns the held collection, nil for other kinds
func (v Value) Collection() *Collection {
	c, _ := v.v.(*Collection)
	return c
}

// Value implements driver.Valuer, maps and slices are stored as JSON
func (v Value) Value() (driver.Value, error) {
	switch v.kind {
	case KindMap, KindSlice:
		data, err := json.Marshal(v.v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	case KindModel, KindCollection:
		return nil, fmt.Errorf("%w: can't store a %s as a column value", ErrInvalidArgument, v.kind)
	}
	return v.v, nil
}

// MarshalJSON encodes the held value
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.v)
}

// Equal reports loose equality: numbers and numeric strings compare by value, other strings compare exactly
func (v Value) Equal(other Value) bool {
	return looseEqual(v, other)
}

func (v Value) isNumeric() bool {
	switch v.kind {
	case KindInt, KindFloat:
		return true
	case KindString:
		_, err := strconv.ParseFloat(strings.TrimSpace(v.v.(string)), 64)
		return err == nil
	}
	return false
}

func looseEqual(a, b Value) bool {
	if a.kind == KindNull || b.kind == KindNull {
		return a.kind == b.kind
	}

	switch {
	case a.kind == KindString && b.kind == KindString:
		return a.v.(string) == b.v.(string)
	case a.kind == KindBool || b.kind == KindBool:
		return a.Bool() == b.Bool()
	case a.isNumeric() && b.isNumeric():
		if a.kind == KindInt && b.kind == KindInt {
			return a.v.(int64) == b.v.(int64)
		}
		x, y := a.Float(), b.Float()
		return x == y || math.Abs(x-y) < 1e-9
	case a.kind == KindTime && b.kind == KindTime:
		return a.v.(time.Time).Equal(b.v.(time.Time))
	case a.kind == KindModel && b.kind == KindModel:
		return a.v.(*Model) == b.v.(*Model)
	case a.kind == KindCollection && b.kind == KindCollection:
		return a.v.(*Collection) == b.v.(*Collection)
	case a.kind == b.kind:
		return utils.DeepEqual(a.v, b.v)
	}

	return false
}
