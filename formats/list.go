package formats

import (
	"strings"

	"github.com/bjaus/staged"
)

// ListFormat renders each body row as one item, cells joined by a space.
// Items are joined by the "separator" option (default newline) and the
// output ends with a newline.
type ListFormat struct {
	tableBase
}

// NewList returns a list handler.
func NewList() staged.Handler { return &ListFormat{} }

func (l *ListFormat) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageBody: l.buildBody}
}

func (l *ListFormat) buildBody() error {
	sep := "\n"
	if _, ok := l.Options().Get(OptSeparator); ok {
		sep = l.Options().String(OptSeparator)
	}
	var all []string
	for _, row := range l.view.rows {
		all = append(all, strings.Join(row, " "))
	}
	if len(all) == 0 {
		return nil
	}
	_, err := l.WriteString(strings.Join(all, sep) + "\n")
	return err
}
