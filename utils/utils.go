package utils

import (
	"database/sql/driver"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"unicode"
)

// moduleDir is the root of this module's sources, frames inside it are skipped by FileWithLineNum
var moduleDir = func() string {
	_, file, _, _ := runtime.Caller(0)
	return sourceDir(file)
}()

// sourceDir strips "utils/utils.go" from file, slashes normalized for windows paths
func sourceDir(file string) string {
	return filepath.ToSlash(filepath.Dir(filepath.Dir(file))) + "/"
}

// FileWithLineNum returns "file:line" of the first caller outside the module, test files count as outside
func FileWithLineNum() string {
	pcs := make([]uintptr, 16)
	frames := runtime.CallersFrames(pcs[:runtime.Callers(2, pcs)])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.File, moduleDir) || strings.HasSuffix(frame.File, "_test.go") {
			return frame.File + ":" + strconv.Itoa(frame.Line)
		}
		if !more {
			return ""
		}
	}
}

// SanitizeName keeps the characters a column or table name may hold, "`users`.`id`" => "users.id"
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || strings.ContainsRune("._*$@#", r) {
			return r
		}
		return -1
	}, name)
}

// ToStringKey builds a loose dictionary key, so 42, int64(42) and "42" land in the same bucket
func ToStringKey(values ...interface{}) string {
	parts := make([]string, len(values))
	for idx, value := range values {
		parts[idx] = keyPart(value)
	}
	return strings.Join(parts, "_")
}

func keyPart(value interface{}) string {
	if valuer, ok := value.(driver.Valuer); ok {
		value, _ = valuer.Value()
	}

	switch v := value.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		if v {
			return "1"
		}
		return "0"
	}

	if s, ok := integerString(value); ok {
		return s
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(reflect.Indirect(reflect.ValueOf(value)).Interface())
}

// ToString formats strings and integers, anything else gives ""
func ToString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	s, _ := integerString(value)
	return s
}

func integerString(value interface{}) (string, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	}
	return "", false
}

// Contains reports whether elem is one of elems
func Contains(elems []string, elem string) bool {
	for _, e := range elems {
		if e == elem {
			return true
		}
	}
	return false
}

// Unique returns elems without duplicates, keeping the first occurrence order
func Unique(elems []string) []string {
	seen := make(map[string]struct{}, len(elems))
	results := make([]string, 0, len(elems))
	for _, e := range elems {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		results = append(results, e)
	}
	return results
}

// DeepEqual compares src and dst, unwrapping driver.Valuer on both sides when they differ
func DeepEqual(src, dst interface{}) bool {
	if reflect.DeepEqual(src, dst) {
		return true
	}
	if valuer, ok := src.(driver.Valuer); ok {
		src, _ = valuer.Value()
	}
	if valuer, ok := dst.(driver.Valuer); ok {
		dst, _ = valuer.Value()
	}
	return reflect.DeepEqual(src, dst)
}
