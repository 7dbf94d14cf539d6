package grading

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DecodeValue turns a raw submitted answer into a generic JSON value.
// Anything that is not valid JSON is kept as a plain string.
func DecodeValue(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(raw)
	}
	return v
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	}
	return "", false
}

// stringList converts a JSON array into strings; non-scalar elements become "".
func stringList(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, len(arr))
	for i, el := range arr {
		out[i], _ = scalarString(el)
	}
	return out, true
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// Metadata is the open per-question bag. Lookups never fail; missing or
// mistyped keys read as zero values.
type Metadata map[string]any

// ParseMetadata accepts an object, a JSON string holding an object, or garbage.
func ParseMetadata(raw []byte) Metadata {
	v := DecodeValue(raw)
	if s, ok := v.(string); ok {
		v = DecodeValue([]byte(s))
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return Metadata{}
}

func (m Metadata) Has(key string) bool {
	v, ok := m[key]
	return ok && v != nil
}

func (m Metadata) Bool(key string) bool {
	switch t := m[key].(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	case float64:
		return t != 0
	}
	return false
}

func (m Metadata) List(key string) []any {
	arr, _ := m[key].([]any)
	return arr
}

func (m Metadata) Map(key string) Metadata {
	obj, _ := m[key].(map[string]any)
	return obj
}

// ID reads a question reference that may be stored as a number or a string.
func (m Metadata) ID(key string) (string, bool) {
	s, ok := scalarString(m[key])
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

// Ints reads a list of numbers, skipping entries that are not numeric.
func (m Metadata) Ints(key string) []int {
	var out []int
	for _, el := range m.List(key) {
		if n, ok := toInt(el); ok {
			out = append(out, n)
		}
	}
	return out
}

// Strings reads either a JSON array of scalars or a single "a|b" string.
func (m Metadata) Strings(key string) []string {
	switch t := m[key].(type) {
	case []any:
		out, _ := stringList(t)
		return out
	case string:
		return strings.Split(t, "|")
	}
	return nil
}
