package staged

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Reserved option keys read by the engine.
const (
	OptionIO       = "io"
	OptionFile     = "file"
	OptionTemplate = "template"
	OptionLayout   = "layout"
)

// Options is the indifferently keyed attribute store shared by the engine and
// a handler for one render call. Keys are normalized with [NormalizeKey], so
// "Show-Headings", ":show_headings" and "show_headings" name the same field.
// A nil value is treated as absent.
//
// Options is not safe for concurrent use.
type Options struct {
	values map[string]any
}

// NewOptions returns a bag seeded from m. Nil values in m are skipped.
func NewOptions(m map[string]any) *Options {
	o := &Options{values: make(map[string]any, len(m))}
	for k, v := range m {
		o.Set(k, v)
	}
	return o
}

// NormalizeKey returns the canonical form of an option key.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.TrimPrefix(key, ":")
	key = strings.ReplaceAll(key, "-", "_")
	return strings.ToLower(key)
}

// Get returns the value stored under key and whether it is present.
func (o *Options) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[NormalizeKey(key)]
	return v, ok
}

// Has reports whether key is present.
func (o *Options) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores value under key. Setting nil removes the key.
func (o *Options) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	k := NormalizeKey(key)
	if value == nil {
		delete(o.values, k)
		return
	}
	o.values[k] = value
}

// Delete removes key.
func (o *Options) Delete(key string) {
	delete(o.values, NormalizeKey(key))
}

// Clone returns an independent copy. Values are copied shallowly.
func (o *Options) Clone() *Options {
	if o == nil {
		return NewOptions(nil)
	}
	return &Options{values: maps.Clone(o.values)}
}

// MergeDefaults copies every field of other that is absent in o. Present
// fields are never overwritten.
func (o *Options) MergeDefaults(other *Options) {
	if other == nil {
		return
	}
	for k, v := range other.values {
		if _, ok := o.values[k]; !ok {
			o.Set(k, v)
		}
	}
}

// Map returns a copy of the stored fields keyed by canonical name.
func (o *Options) Map() map[string]any {
	if o == nil {
		return map[string]any{}
	}
	return maps.Clone(o.values)
}

// Keys returns the canonical keys in sorted order.
func (o *Options) Keys() []string {
	if o == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(o.values))
}

// Len returns the number of present fields.
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.values)
}

// String returns the field as a string. Non-string scalars are formatted;
// absent fields yield "".
func (o *Options) String(key string) string {
	v, ok := o.Get(key)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case bool, int, int64, float64, rune:
		return fmt.Sprint(s)
	default:
		return ""
	}
}

// Bool returns the field as a bool, or fallback if absent or not boolean.
// String values are parsed with [strconv.ParseBool].
func (o *Options) Bool(key string, fallback bool) bool {
	v, ok := o.Get(key)
	if !ok {
		return fallback
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	}
	return fallback
}

// Int returns the field as an int, or fallback if absent or not numeric.
func (o *Options) Int(key string, fallback int) int {
	v, ok := o.Get(key)
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return parsed
		}
	}
	return fallback
}

// Strings returns the field as a string slice. A single string becomes a
// one-element slice; []any elements are formatted.
func (o *Options) Strings(key string) []string {
	v, ok := o.Get(key)
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case []string:
		return slices.Clone(s)
	case string:
		return []string{s}
	case []any:
		out := make([]string, len(s))
		for i, item := range s {
			out[i] = fmt.Sprint(item)
		}
		return out
	default:
		return nil
	}
}

// Writer returns the field as an [io.Writer], or nil.
func (o *Options) Writer(key string) io.Writer {
	v, ok := o.Get(key)
	if !ok {
		return nil
	}
	w, _ := v.(io.Writer)
	return w
}
