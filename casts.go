package entity

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
)

// Cast types
const (
	CastInt            = "int"
	CastInteger        = "integer"
	CastReal           = "real"
	CastFloat          = "float"
	CastDouble         = "double"
	CastString         = "string"
	CastBool           = "bool"
	CastBoolean        = "boolean"
	CastObject         = "object"
	CastArray          = "array"
	CastJSON           = "json"
	CastDate           = "date"
	CastDateTime       = "datetime"
	CastCustomDateTime = "custom_datetime"
	CastTimestamp      = "timestamp"
	CastUUID           = "uuid"
	// CastDecimal is written "decimal:<places>", values read back as fixed point strings
	CastDecimal = "decimal"
)

var standardDateFormat = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)

// CastType returns the normalized cast type of key, "date:02/01/2006" gives custom_datetime
func (s *AttributeStore) CastType(key string) string {
	castType := strings.ToLower(strings.TrimSpace(s.casts[key]))
	if isCustomDateTimeCast(castType) {
		return CastCustomDateTime
	}
	if strings.HasPrefix(castType, "decimal:") {
		return CastDecimal
	}
	return castType
}

// customDateFormat returns the layout of a "date:<layout>" or "datetime:<layout>" cast
func (s *AttributeStore) customDateFormat(key string) string {
	parts := strings.SplitN(s.casts[key], ":", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return s.dateFormat
}

func isCustomDateTimeCast(castType string) bool {
	return strings.HasPrefix(castType, "date:") || strings.HasPrefix(castType, "datetime:")
}

// Cast converts a raw value following the cast declared for key, null stays null
func (s *AttributeStore) Cast(key string, v Value) (Value, error) {
	if v.IsNull() {
		return v, nil
	}

	switch s.CastType(key) {
	case CastInt, CastInteger:
		return Value{KindInt, v.Int()}, nil
	case CastReal, CastFloat, CastDouble:
		return Value{KindFloat, v.Float()}, nil
	case CastString:
		return Value{KindString, v.String()}, nil
	case CastBool, CastBoolean:
		return Value{KindBool, v.Bool()}, nil
	case CastObject, CastArray, CastJSON:
		return fromJSON(v)
	case CastDate:
		t, err := s.AsDate(v)
		if err != nil {
			return Null(), fmt.Errorf("cast %s to date: %w", key, err)
		}
		return Value{KindTime, t}, nil
	case CastDateTime, CastCustomDateTime:
		t, err := s.AsDateTime(v)
		if err != nil {
			return Null(), fmt.Errorf("cast %s to datetime: %w", key, err)
		}
		return Value{KindTime, t}, nil
	case CastTimestamp:
		t, err := s.AsDateTime(v)
		if err != nil {
			return Null(), fmt.Errorf("cast %s to timestamp: %w", key, err)
		}
		return Value{KindInt, t.Unix()}, nil
	case CastDecimal:
		return s.asDecimal(key, v)
	case CastUUID:
		id, err := uuid.Parse(v.String())
		if err != nil {
			return Null(), fmt.Errorf("cast %s to uuid: %w", key, err)
		}
		return Value{KindString, id.String()}, nil
	}

	return v, nil
}

func (s *AttributeStore) asDecimal(key string, v Value) (Value, error) {
	places, err := strconv.ParseInt(strings.TrimPrefix(strings.ToLower(s.casts[key]), "decimal:"), 10, 32)
	if err != nil {
		return Null(), fmt.Errorf("cast %s: %w: bad decimal places %q", key, ErrInvalidArgument, s.casts[key])
	}

	var d decimal.Decimal
	switch v.kind {
	case KindInt:
		d = decimal.NewFromInt(v.v.(int64))
	case KindFloat:
		d = decimal.NewFromFloat(v.v.(float64))
	default:
		if d, err = decimal.NewFromString(strings.TrimSpace(v.String())); err != nil {
			return Null(), fmt.Errorf("cast %s to decimal: %w", key, err)
		}
	}
	return Value{KindString, d.StringFixed(int32(places))}, nil
}

// AsDate converts v to a time truncated to the start of its day
func (s *AttributeStore) AsDate(v Value) (time.Time, error) {
	t, err := s.AsDateTime(v)
	if err != nil {
		return t, err
	}
	return now.With(t).BeginningOfDay(), nil
}

// AsDateTime converts times, unix timestamps, "YYYY-MM-DD" strings and strings in the storage format to a time
func (s *AttributeStore) AsDateTime(v Value) (time.Time, error) {
	switch v.kind {
	case KindTime:
		return v.v.(time.Time), nil
	case KindInt:
		return time.Unix(v.v.(int64), 0), nil
	case KindFloat:
		sec, frac := splitFloat(v.v.(float64))
		return time.Unix(sec, frac), nil
	case KindString:
		str := strings.TrimSpace(v.v.(string))
		if strings.HasPrefix(str, "0000-00-00") {
			return time.Time{}, nil
		}
		if sec, err := strconv.ParseInt(str, 10, 64); err == nil {
			return time.Unix(sec, 0), nil
		}
		if standardDateFormat.MatchString(str) {
			t, err := time.ParseInLocation("2006-1-2", str, time.Local)
			if err != nil {
				return t, err
			}
			return now.With(t).BeginningOfDay(), nil
		}
		if t, err := time.ParseInLocation(s.dateFormat, str, time.Local); err == nil {
			return t, nil
		}
		return now.New(time.Now()).Parse(str)
	}

	return time.Time{}, fmt.Errorf("%w: can't convert %s to a date", ErrInvalidArgument, v.kind)
}

// FromDateTime converts a temporal value to its storage string, empty values are kept as they are
func (s *AttributeStore) FromDateTime(v Value) (Value, error) {
	if !v.Bool() {
		return v, nil
	}

	// zero dates are stored as they are
	if v.kind == KindString && strings.HasPrefix(strings.TrimSpace(v.v.(string)), "0000-00-00") {
		return v, nil
	}

	t, err := s.AsDateTime(v)
	if err != nil {
		return Null(), err
	}
	return Value{KindString, s.SerializeDate(t)}, nil
}

// SerializeDate formats t with the storage format
func (s *AttributeStore) SerializeDate(t time.Time) string {
	return t.Format(s.dateFormat)
}

func splitFloat(f float64) (int64, int64) {
	sec := int64(f)
	return sec, int64((f - float64(sec)) * 1e9)
}

// asJSON encodes v as a JSON string
func asJSON(v Value) (Value, error) {
	if v.kind == KindString {
		// already encoded objects and arrays are stored as they are
		if str := strings.TrimSpace(v.v.(string)); strings.HasPrefix(str, "{") || strings.HasPrefix(str, "[") {
			if json.Valid([]byte(str)) {
				return v, nil
			}
		}
	}

	data, err := json.Marshal(v.v)
	if err != nil {
		return Null(), err
	}
	return Value{KindString, string(data)}, nil
}

// fromJSON decodes a JSON string into a map or a slice
func fromJSON(v Value) (Value, error) {
	if v.kind != KindString {
		return v, nil
	}

	str := v.v.(string)
	if str == "" {
		return Null(), nil
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(str), &decoded); err != nil {
		return Null(), fmt.Errorf("decode json attribute: %w", err)
	}
	return ValueOf(decoded), nil
}
