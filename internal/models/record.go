// Package models defines the data shapes shared by the sync engine, the
// remote store and the HTTP layer.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fields is the structured payload of a record, keyed by field name.
type Fields map[string]any

// Record is one entity of a collection. ID is stable across refreshes and is
// the only field the engine interprets.
type Record struct {
	ID        string    `json:"id"`
	Fields    Fields    `json:"fields"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// String returns the named field as a string. Numbers and booleans are
// formatted; missing or nil fields yield "".
func (f Fields) String(name string) string {
	switch v := f[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the named field as an int. JSON numbers decode as float64,
// so both are accepted along with numeric strings.
func (f Fields) Int(name string) int {
	switch v := f[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// Bool returns the named field as a bool.
func (f Fields) Bool(name string) bool {
	switch v := f[name].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// Strings returns the named field as a string slice.
func (f Fields) Strings(name string) []string {
	switch v := f[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}

// IsBlank reports whether the named field is missing, nil or an empty string.
func (f Fields) IsBlank(name string) bool {
	v, ok := f[name]
	if !ok || v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
