package formats

import (
	"html"

	"github.com/microcosm-cc/bluemonday"

	"github.com/bjaus/staged"
)

// HTMLFormat renders an HTML table. Cells are escaped unless "allow_markup"
// is set, in which case they are sanitized with a user-content policy.
type HTMLFormat struct {
	tableBase
	policy *bluemonday.Policy
}

// NewHTML returns an HTML table handler.
func NewHTML() staged.Handler { return &HTMLFormat{} }

func (h *HTMLFormat) PrepareHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageTable: h.prepare}
}

func (h *HTMLFormat) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{
		StageHeader: h.buildHeader,
		StageBody:   h.buildBody,
		StageFooter: h.buildFooter,
	}
}

func (h *HTMLFormat) FinalizeHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageTable: h.finalizeTable}
}

func (h *HTMLFormat) prepare() error {
	if err := h.prepareTable(); err != nil {
		return err
	}
	if h.Options().Bool(OptAllowMarkup, false) {
		h.policy = bluemonday.UGCPolicy()
	}
	return nil
}

func (h *HTMLFormat) Layout(build func() error) error {
	if err := h.Println("<table>"); err != nil {
		return err
	}
	if h.view.title != "" {
		if err := h.Printf("  <caption>%s</caption>\n", h.cell(h.view.title)); err != nil {
			return err
		}
	}
	if err := build(); err != nil {
		return err
	}
	return h.Println("</table>")
}

func (h *HTMLFormat) buildHeader() error {
	if len(h.view.header) == 0 {
		return nil
	}
	return h.section("thead", "th", [][]string{h.view.header})
}

func (h *HTMLFormat) buildBody() error {
	return h.section("tbody", "td", h.view.rows)
}

func (h *HTMLFormat) buildFooter() error {
	if len(h.view.footer) == 0 {
		return nil
	}
	return h.section("tfoot", "td", [][]string{h.view.footer})
}

func (h *HTMLFormat) finalizeTable() error {
	if h.view.caption == "" {
		return nil
	}
	return h.Printf("<p>%s</p>\n", h.cell(h.view.caption))
}

func (h *HTMLFormat) section(tag, cellTag string, rows [][]string) error {
	if err := h.Printf("  <%s>\n", tag); err != nil {
		return err
	}
	for _, row := range rows {
		if err := h.Println("    <tr>"); err != nil {
			return err
		}
		for i, cell := range row {
			style := alignStyle(h.view.aligns, i)
			if err := h.Printf("      <%s%s>%s</%s>\n", cellTag, style, h.cell(cell), cellTag); err != nil {
				return err
			}
		}
		if err := h.Println("    </tr>"); err != nil {
			return err
		}
	}
	return h.Printf("  </%s>\n", tag)
}

func (h *HTMLFormat) cell(s string) string {
	if h.policy != nil {
		return h.policy.Sanitize(s)
	}
	return html.EscapeString(s)
}

func alignStyle(aligns []Alignment, col int) string {
	if col >= len(aligns) {
		return ""
	}
	switch aligns[col] {
	case AlignRight:
		return ` style="text-align: right"`
	case AlignCenter:
		return ` style="text-align: center"`
	default:
		return ""
	}
}
