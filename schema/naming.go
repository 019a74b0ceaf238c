package schema

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Namer namer interface
type Namer interface {
	TableName(name string) string
	ColumnName(name string) string
	ForeignKeyName(table string) string
	BelongsToKeyName(relation, ownerKey string) string
	AccessorName(name string) string
	TrimPrefix(table string) string
}

// NamingStrategy tables, columns naming strategy
type NamingStrategy struct {
	TablePrefix   string
	SingularTable bool
}

// TableName convert an entity type name to a table name, "UserProfile" => "user_profiles"
func (ns NamingStrategy) TableName(str string) string {
	if ns.SingularTable {
		return ns.TablePrefix + toDBName(str)
	}
	return ns.TablePrefix + inflection.Plural(toDBName(str))
}

// ColumnName convert string to column name
func (ns NamingStrategy) ColumnName(str string) string {
	return toDBName(str)
}

// TrimPrefix removes the configured table prefix
func (ns NamingStrategy) TrimPrefix(table string) string {
	return strings.TrimPrefix(table, ns.TablePrefix)
}

// ForeignKeyName default foreign key pointing at table, "#__users" => "user_id"
func (ns NamingStrategy) ForeignKeyName(table string) string {
	return inflection.Singular(ns.TrimPrefix(table)) + "_id"
}

// BelongsToKeyName default foreign key of an inverse relation, ("author", "id") => "author_id"
func (ns NamingStrategy) BelongsToKeyName(relation, ownerKey string) string {
	return fmt.Sprintf("%s_%s", toDBName(relation), ownerKey)
}

// AccessorName normalizes an attribute name to the lower camel case form used to register mutators,
// "reset_count" and "resetCount" both give "resetCount"
func (ns NamingStrategy) AccessorName(str string) string {
	return ToCamelCase(str)
}

var (
	dbNames    sync.Map
	camelNames sync.Map
	titleCaser = cases.Title(language.Und, cases.NoLower)
	// initialisms are folded to title case first so "EmployeeID" splits like "EmployeeId"
	initialisms = strings.NewReplacer(foldInitialisms(
		"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON",
		"LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SSH", "TLS", "TTL", "UID", "UI", "UUID",
		"URI", "URL", "UTF8", "VM", "XML", "XSRF", "XSS",
	)...)
)

func foldInitialisms(words ...string) []string {
	pairs := make([]string, 0, len(words)*2)
	for _, word := range words {
		pairs = append(pairs, word, titleCaser.String(strings.ToLower(word)))
	}
	return pairs
}

// ToCamelCase converts "reset_count", "reset count" or "ResetCount" to "resetCount"
func ToCamelCase(name string) string {
	if v, ok := camelNames.Load(name); ok {
		return v.(string)
	}

	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == ' ' || r == '-'
	})

	var buf strings.Builder
	for idx, word := range words {
		if idx > 0 {
			buf.WriteString(titleCaser.String(word))
			continue
		}
		first, size := utf8.DecodeRuneInString(word)
		buf.WriteRune(unicode.ToLower(first))
		buf.WriteString(word[size:])
	}

	result := buf.String()
	camelNames.Store(name, result)
	return result
}

// toDBName converts "EmployeeID" to "employee_id". A word starts at an upper case letter
// following a lower case letter or a digit, or at the last upper case letter of a run.
func toDBName(name string) string {
	if v, ok := dbNames.Load(name); ok {
		return v.(string)
	}

	runes := []rune(initialisms.Replace(name))
	var buf strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && runes[i-1] != '_' {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				buf.WriteByte('_')
			}
		}
		buf.WriteRune(unicode.ToLower(r))
	}

	result := buf.String()
	dbNames.Store(name, result)
	return result
}
