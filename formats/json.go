package formats

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/bjaus/staged"
)

// JSONFormat renders the body rows as a JSON array of objects keyed by
// column name, in column order. Header and footer stages write nothing.
type JSONFormat struct {
	tableBase
	indent string
}

// NewJSON returns a JSON handler.
func NewJSON() staged.Handler { return &JSONFormat{} }

func (j *JSONFormat) PrepareHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageTable: j.prepare}
}

func (j *JSONFormat) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageBody: j.buildBody}
}

func (j *JSONFormat) prepare() error {
	if err := j.prepareTable(); err != nil {
		return err
	}
	j.indent = indentOption(j.Options())
	return nil
}

func (j *JSONFormat) buildBody() error {
	enc := json.NewEncoder(j)
	enc.SetEscapeHTML(false)
	if j.indent != "" {
		enc.SetIndent("", j.indent)
	}
	return enc.Encode(j.view.records())
}

// record is one row keyed by column name. It marshals with keys in column
// order rather than sorted.
type record struct {
	keys   []string
	values []string
}

func (v *view) record(row []string) record {
	n := max(len(row), len(v.columns))
	values := make([]string, n)
	copy(values, row)
	return record{keys: v.keys(n), values: values}
}

func (v *view) records() []record {
	out := make([]record, len(v.rows))
	for i, row := range v.rows {
		out[i] = v.record(row)
	}
	return out
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(r.values[i]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// indentOption reads "indent" as a space count or a literal indent string.
func indentOption(opts *staged.Options) string {
	if n := opts.Int(OptIndent, -1); n >= 0 {
		return strings.Repeat(" ", n)
	}
	return opts.String(OptIndent)
}
