package logger

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-entity/entity/utils"
)

const (
	tmFmtWithMS = "2006-01-02 15:04:05.999"
	tmFmtZero   = "0000-00-00 00:00:00"
	nullStr     = "NULL"
)

func isPrintable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// ExplainSQL inlines vars into sql so it can be printed, placeholders are either "?"
// or matched by numericPlaceholder, e.g. `\$(\d+)` for postgres
func ExplainSQL(sql string, numericPlaceholder *regexp.Regexp, escaper string, vars ...interface{}) string {
	var convertParams func(interface{}, int)
	vars2 := make([]string, len(vars))

	convertParams = func(v interface{}, idx int) {
		switch v := v.(type) {
		case bool:
			vars2[idx] = strconv.FormatBool(v)
		case time.Time:
			if v.IsZero() {
				vars2[idx] = escaper + tmFmtZero + escaper
			} else {
				vars2[idx] = escaper + v.Format(tmFmtWithMS) + escaper
			}
		case *time.Time:
			if v != nil {
				convertParams(*v, idx)
			} else {
				vars2[idx] = nullStr
			}
		case driver.Valuer:
			reflectValue := reflect.ValueOf(v)
			if v != nil && reflectValue.IsValid() && ((reflectValue.Kind() == reflect.Ptr && !reflectValue.IsNil()) || reflectValue.Kind() != reflect.Ptr) {
				r, _ := v.Value()
				convertParams(r, idx)
			} else {
				vars2[idx] = nullStr
			}
		case fmt.Stringer:
			reflectValue := reflect.ValueOf(v)
			if reflectValue.Kind() == reflect.Ptr && reflectValue.IsNil() {
				vars2[idx] = nullStr
			} else {
				vars2[idx] = escaper + strings.ReplaceAll(v.String(), escaper, escaper+escaper) + escaper
			}
		case []byte:
			if s := string(v); isPrintable(s) {
				vars2[idx] = escaper + strings.ReplaceAll(s, escaper, escaper+escaper) + escaper
			} else {
				vars2[idx] = escaper + "<binary>" + escaper
			}
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			vars2[idx] = utils.ToString(v)
		case float32:
			vars2[idx] = strconv.FormatFloat(float64(v), 'f', -1, 32)
		case float64:
			vars2[idx] = strconv.FormatFloat(v, 'f', -1, 64)
		case string:
			vars2[idx] = escaper + strings.ReplaceAll(v, escaper, escaper+escaper) + escaper
		default:
			rv := reflect.ValueOf(v)
			if v == nil || !rv.IsValid() || rv.Kind() == reflect.Ptr && rv.IsNil() {
				vars2[idx] = nullStr
			} else if rv.Kind() == reflect.Ptr && !rv.IsZero() {
				convertParams(reflect.Indirect(rv).Interface(), idx)
			} else {
				// named types such as `type role string` fall back to their underlying kind
				for _, t := range []reflect.Type{reflect.TypeOf(""), reflect.TypeOf([]byte(nil)), reflect.TypeOf(int64(0)), reflect.TypeOf(float64(0)), reflect.TypeOf(false)} {
					if rv.Type().ConvertibleTo(t) && rv.Kind() == t.Kind() {
						convertParams(rv.Convert(t).Interface(), idx)
						return
					}
				}
				vars2[idx] = escaper + strings.ReplaceAll(fmt.Sprint(v), escaper, escaper+escaper) + escaper
			}
		}
	}

	for idx, v := range vars {
		convertParams(v, idx)
	}

	if numericPlaceholder == nil {
		var idx int
		var newSQL strings.Builder

		for _, v := range []byte(sql) {
			if v == '?' {
				if len(vars2) > idx {
					newSQL.WriteString(vars2[idx])
					idx++
					continue
				}
			}
			newSQL.WriteByte(v)
		}

		sql = newSQL.String()
	} else {
		sql = numericPlaceholder.ReplaceAllStringFunc(sql, func(placeholder string) string {
			matches := numericPlaceholder.FindStringSubmatch(placeholder)
			if len(matches) < 2 {
				return placeholder
			}
			n, err := strconv.Atoi(matches[1])
			if err != nil || n < 1 || n > len(vars2) {
				return placeholder
			}
			return vars2[n-1]
		})
	}

	return sql
}
