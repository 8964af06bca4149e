package formats

import (
	"encoding/json"

	"github.com/bjaus/staged"
)

// JSONLFormat renders one JSON object per body row. The "indent" option is
// ignored so each record stays on one line.
type JSONLFormat struct {
	tableBase
}

// NewJSONL returns a JSON Lines handler.
func NewJSONL() staged.Handler { return &JSONLFormat{} }

func (j *JSONLFormat) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageBody: j.buildBody}
}

func (j *JSONLFormat) buildBody() error {
	enc := json.NewEncoder(j)
	enc.SetEscapeHTML(false)
	for _, row := range j.view.rows {
		if err := enc.Encode(j.view.record(row)); err != nil {
			return err
		}
	}
	return nil
}
