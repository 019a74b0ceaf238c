package utils

import "strings"

// PathSeparator separates the segments of a nested attribute path, e.g. "info->address->city"
const PathSeparator = "->"

// SplitPath splits "info->address->city" into "info" and "address->city"
func SplitPath(key string) (head, rest string, nested bool) {
	idx := strings.Index(key, PathSeparator)
	if idx < 0 {
		return key, "", false
	}
	return key[:idx], key[idx+len(PathSeparator):], true
}

// SetPath assigns value inside data following path, creating intermediate maps as needed.
// A non-map value found along the path is replaced by a map.
func SetPath(data map[string]interface{}, path string, value interface{}) map[string]interface{} {
	if data == nil {
		data = map[string]interface{}{}
	}

	segments := strings.Split(path, PathSeparator)
	current := data
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value

	return data
}

// GetPath reads the value stored under path, the second result is false when any segment is missing
func GetPath(data map[string]interface{}, path string) (interface{}, bool) {
	var current interface{} = data
	for _, segment := range strings.Split(path, PathSeparator) {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if current, ok = m[segment]; !ok {
			return nil, false
		}
	}
	return current, true
}
