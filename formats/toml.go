package formats

import (
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bjaus/staged"
)

// TOMLFormat renders the table as a TOML document: an optional top-level
// title and an array of tables named by the "root" option (default "rows").
// TOML tables are unordered, so keys are written sorted.
type TOMLFormat struct {
	tableBase
}

// NewTOML returns a TOML handler.
func NewTOML() staged.Handler { return &TOMLFormat{} }

func (t *TOMLFormat) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageBody: t.buildBody}
}

func (t *TOMLFormat) buildBody() error {
	key := t.Options().String(OptRoot)
	if key == "" {
		key = "rows"
	}
	rows := make([]map[string]string, len(t.view.rows))
	for i, row := range t.view.rows {
		r := t.view.record(row)
		rows[i] = make(map[string]string, len(r.keys))
		for j, k := range r.keys {
			rows[i][k] = r.values[j]
		}
	}
	doc := map[string]any{key: rows}
	if t.view.title != "" {
		doc["title"] = t.view.title
	}

	enc := toml.NewEncoder(t)
	if indent := indentOption(t.Options()); indent != "" {
		enc.SetIndentSymbol(indent)
		enc.SetIndentTables(true)
	}
	return enc.Encode(doc)
}
