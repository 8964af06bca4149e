package formats

import (
	"fmt"
	"text/template"

	"github.com/bjaus/staged"
)

// TemplateRow is the data passed to the "row_template" template for each
// body row.
type TemplateRow struct {
	Index  int
	Cells  []string
	Fields map[string]string
}

// GoTemplateFormat executes the "row_template" option, a text/template, once
// per body row. Each execution is followed by a newline.
type GoTemplateFormat struct {
	tableBase
	tmpl *template.Template
}

// NewGoTemplate returns a text/template handler.
func NewGoTemplate() staged.Handler { return &GoTemplateFormat{} }

func (g *GoTemplateFormat) PrepareHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageTable: g.prepare}
}

func (g *GoTemplateFormat) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageBody: g.buildBody}
}

func (g *GoTemplateFormat) prepare() error {
	if err := g.prepareTable(); err != nil {
		return err
	}
	src := g.Options().String(OptRowTemplate)
	if src == "" {
		return fmt.Errorf("%w: option %q is empty", ErrInvalidTemplate, OptRowTemplate)
	}
	tmpl, err := template.New(OptRowTemplate).Option("missingkey=zero").Parse(src)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTemplate, err)
	}
	g.tmpl = tmpl
	return nil
}

func (g *GoTemplateFormat) buildBody() error {
	for i, row := range g.view.rows {
		r := g.view.record(row)
		fields := make(map[string]string, len(r.keys))
		for j, k := range r.keys {
			fields[k] = r.values[j]
		}
		if err := g.tmpl.Execute(g, TemplateRow{Index: i, Cells: row, Fields: fields}); err != nil {
			return err
		}
		if err := g.Println(); err != nil {
			return err
		}
	}
	return nil
}
