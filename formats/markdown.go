package formats

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/bjaus/staged"
)

var markdownEscaper = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

// MarkdownFormat renders a GitHub-flavored Markdown table. A header is
// required; "show_headings" does not apply since the syntax has no headerless
// table.
type MarkdownFormat struct {
	tableBase
	header []string
	widths []int
	aligns []Alignment
}

// NewMarkdown returns a Markdown table handler.
func NewMarkdown() staged.Handler { return &MarkdownFormat{} }

func (m *MarkdownFormat) PrepareHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageTable: m.prepare}
}

func (m *MarkdownFormat) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{
		StageHeader: m.buildHeader,
		StageBody:   m.buildBody,
		StageFooter: func() error { return m.writeRow(m.view.footer) },
	}
}

func (m *MarkdownFormat) FinalizeHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageTable: m.finalizeTable}
}

func (m *MarkdownFormat) prepare() error {
	if err := m.prepareTable(); err != nil {
		return err
	}
	if len(m.view.columns) == 0 {
		return fmt.Errorf("%w: format %q requires Headed, not implemented by %T", ErrMissingInterface, Markdown, m.Data())
	}
	m.header = m.view.columns
	numCols := len(m.header)

	// Column widths, minimum 3 for the alignment markers.
	m.widths = make([]int, numCols)
	measure := func(cells []string) {
		for i, cell := range cells {
			if w := runewidth.StringWidth(markdownEscaper.Replace(cell)); i < numCols && w > m.widths[i] {
				m.widths[i] = w
			}
		}
	}
	measure(m.header)
	for _, row := range m.view.rows {
		measure(row)
	}
	measure(m.view.footer)
	for i := range m.widths {
		if m.widths[i] < 3 {
			m.widths[i] = 3
		}
	}
	m.aligns = extendAligns(m.view.aligns, numCols)
	return nil
}

func (m *MarkdownFormat) Layout(build func() error) error {
	if m.view.title != "" {
		if err := m.Printf("### %s\n\n", m.view.title); err != nil {
			return err
		}
	}
	return build()
}

func (m *MarkdownFormat) buildHeader() error {
	if err := m.writeRow(m.header); err != nil {
		return err
	}
	sep := make([]string, len(m.widths))
	for i, width := range m.widths {
		switch m.aligns[i] {
		case AlignRight:
			sep[i] = strings.Repeat("-", width-1) + ":"
		case AlignCenter:
			sep[i] = ":" + strings.Repeat("-", width-2) + ":"
		default:
			sep[i] = strings.Repeat("-", width)
		}
	}
	return m.Printf("| %s |\n", strings.Join(sep, " | "))
}

func (m *MarkdownFormat) buildBody() error {
	for _, row := range m.view.rows {
		if err := m.writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (m *MarkdownFormat) finalizeTable() error {
	if m.view.caption == "" {
		return nil
	}
	return m.Printf("\n_%s_\n", m.view.caption)
}

func (m *MarkdownFormat) writeRow(cells []string) error {
	if len(cells) == 0 {
		return nil
	}
	padded := make([]string, len(m.widths))
	for i, width := range m.widths {
		cell := ""
		if i < len(cells) {
			cell = markdownEscaper.Replace(cells[i])
		}
		padded[i] = alignCell(cell, width, m.aligns[i])
	}
	return m.Printf("| %s |\n", strings.Join(padded, " | "))
}
