package formats

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/bjaus/staged"
)

type borderChars struct {
	topLeft, topRight, bottomLeft, bottomRight string
	horizontal, vertical                       string
	topTee, bottomTee, leftTee, rightTee       string
	cross                                      string
}

var borderSets = map[BorderStyle]borderChars{
	BorderRounded: {
		topLeft: "╭", topRight: "╮", bottomLeft: "╰", bottomRight: "╯",
		horizontal: "─", vertical: "│",
		topTee: "┬", bottomTee: "┴", leftTee: "├", rightTee: "┤",
		cross: "┼",
	},
	BorderASCII: {
		topLeft: "+", topRight: "+", bottomLeft: "+", bottomRight: "+",
		horizontal: "-", vertical: "|",
		topTee: "+", bottomTee: "+", leftTee: "+", rightTee: "+",
		cross: "+",
	},
	BorderHeavy: {
		topLeft: "┏", topRight: "┓", bottomLeft: "┗", bottomRight: "┛",
		horizontal: "━", vertical: "┃",
		topTee: "┳", bottomTee: "┻", leftTee: "┣", rightTee: "┫",
		cross: "╋",
	},
	BorderDouble: {
		topLeft: "╔", topRight: "╗", bottomLeft: "╚", bottomRight: "╝",
		horizontal: "═", vertical: "║",
		topTee: "╦", bottomTee: "╩", leftTee: "╠", rightTee: "╣",
		cross: "╬",
	},
}

// TextFormat renders a box-drawn table. The layout draws the outer frame and
// title; each build stage draws its own rows.
type TextFormat struct {
	tableBase
	border BorderStyle
	widths []int
	aligns []Alignment
}

// NewText returns a text table handler.
func NewText() staged.Handler { return &TextFormat{} }

func (t *TextFormat) PrepareHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageTable: t.prepare}
}

func (t *TextFormat) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{
		StageHeader: t.buildHeader,
		StageBody:   t.buildBody,
		StageFooter: t.buildFooter,
	}
}

func (t *TextFormat) FinalizeHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageTable: t.finalizeTable}
}

func (t *TextFormat) prepare() error {
	if err := t.prepareTable(); err != nil {
		return err
	}
	border, err := borderOption(t.Options())
	if err != nil {
		return err
	}
	t.border = border

	v := t.view
	numCols := v.numCols()
	t.widths = computeWidths(numCols, v.header, v.rows, v.footer)
	if limit := t.Options().Int(OptMaxWidth, 0); limit > 0 {
		for i := range t.widths {
			t.widths[i] = min(t.widths[i], limit)
		}
	}
	t.aligns = extendAligns(v.aligns, numCols)
	return nil
}

// Layout draws the frame around the build stages. Borderless tables only get
// the title line.
func (t *TextFormat) Layout(build func() error) error {
	if t.border == BorderNone {
		if t.view.title != "" {
			if err := t.Println(t.view.title); err != nil {
				return err
			}
		}
		return build()
	}

	bc := borderSets[t.border]
	if t.view.title != "" {
		// Full-width top border (no column separators).
		if err := t.drawHLine(bc.topLeft, bc.horizontal, bc.horizontal, bc.topRight); err != nil {
			return err
		}
		inner := tableInnerWidth(t.widths) - 2 // subtract 1-space padding on each side
		padded := alignCell(t.view.title, inner, AlignCenter)
		if err := t.Printf("%s %s %s\n", bc.vertical, padded, bc.vertical); err != nil {
			return err
		}
		if err := t.drawHLine(bc.leftTee, bc.horizontal, bc.topTee, bc.rightTee); err != nil {
			return err
		}
	} else {
		if err := t.drawHLine(bc.topLeft, bc.horizontal, bc.topTee, bc.topRight); err != nil {
			return err
		}
	}

	if err := build(); err != nil {
		return err
	}
	return t.drawHLine(bc.bottomLeft, bc.horizontal, bc.bottomTee, bc.bottomRight)
}

func (t *TextFormat) buildHeader() error {
	if len(t.view.header) == 0 {
		return nil
	}
	if err := t.writeRow(t.view.header); err != nil {
		return err
	}
	return t.writeSep()
}

func (t *TextFormat) buildBody() error {
	for _, row := range t.view.rows {
		if err := t.writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (t *TextFormat) buildFooter() error {
	if len(t.view.footer) == 0 {
		return nil
	}
	if err := t.writeSep(); err != nil {
		return err
	}
	return t.writeRow(t.view.footer)
}

func (t *TextFormat) finalizeTable() error {
	if t.view.caption == "" {
		return nil
	}
	return t.Println(t.view.caption)
}

func (t *TextFormat) writeRow(cells []string) error {
	if t.border == BorderNone {
		return t.writePlainRow(cells)
	}
	return t.drawBorderedRow(cells, borderSets[t.border].vertical)
}

func (t *TextFormat) writeSep() error {
	if t.border == BorderNone {
		return t.writePlainSep()
	}
	bc := borderSets[t.border]
	return t.drawHLine(bc.leftTee, bc.horizontal, bc.cross, bc.rightTee)
}

func borderOption(opts *staged.Options) (BorderStyle, error) {
	v, ok := opts.Get(OptBorder)
	if !ok {
		return BorderRounded, nil
	}
	if b, ok := v.(BorderStyle); ok {
		return b, nil
	}
	return ParseBorder(opts.String(OptBorder))
}

func colCount(header []string, rows [][]string, footer []string) int {
	n := len(header)
	for _, row := range rows {
		if len(row) > n {
			n = len(row)
		}
	}
	if len(footer) > n {
		n = len(footer)
	}
	return n
}

func computeWidths(numCols int, header []string, rows [][]string, footer []string) []int {
	widths := make([]int, numCols)
	for i, h := range header {
		if w := runewidth.StringWidth(h); w > widths[i] {
			widths[i] = w
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); i < numCols && w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i, cell := range footer {
		if w := runewidth.StringWidth(cell); i < numCols && w > widths[i] {
			widths[i] = w
		}
	}
	return widths
}

func extendAligns(aligns []Alignment, numCols int) []Alignment {
	if len(aligns) >= numCols {
		return aligns[:numCols]
	}
	extended := make([]Alignment, numCols)
	copy(extended, aligns)
	return extended
}

// --- Plain table (BorderNone) ---

func (t *TextFormat) writePlainSep() error {
	sep := make([]string, len(t.widths))
	for i, width := range t.widths {
		sep[i] = strings.Repeat("-", width)
	}
	return t.Println(strings.Join(sep, "  "))
}

func (t *TextFormat) writePlainRow(cells []string) error {
	parts := make([]string, len(t.widths))
	for i, width := range t.widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = formatTableCell(cell, width, t.aligns[i])
	}
	return t.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
}

// --- Bordered table ---

// tableInnerWidth returns the total character width between the outer vertical
// borders of a bordered table. Each cell contributes its width plus 2 (one
// space of padding on each side), and cells are separated by a single vertical
// border character.
func tableInnerWidth(widths []int) int {
	n := 0
	for _, w := range widths {
		n += w + 2
	}
	if len(widths) > 1 {
		n += len(widths) - 1
	}
	return n
}

func (t *TextFormat) drawHLine(left, fill, mid, right string) error {
	var sb strings.Builder
	sb.WriteString(left)
	for i, width := range t.widths {
		sb.WriteString(strings.Repeat(fill, width+2))
		if i < len(t.widths)-1 {
			sb.WriteString(mid)
		}
	}
	sb.WriteString(right)
	return t.Println(sb.String())
}

func (t *TextFormat) drawBorderedRow(cells []string, vert string) error {
	var sb strings.Builder
	sb.WriteString(vert)
	for i, width := range t.widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		sb.WriteString(" ")
		sb.WriteString(formatTableCell(cell, width, t.aligns[i]))
		sb.WriteString(" ")
		if i < len(t.widths)-1 {
			sb.WriteString(vert)
		}
	}
	sb.WriteString(vert)
	return t.Println(sb.String())
}

func formatTableCell(s string, width int, align Alignment) string {
	if width > 0 && runewidth.StringWidth(s) > width {
		if width <= 3 {
			s = runewidth.Truncate(s, width, "")
		} else {
			s = runewidth.Truncate(s, width, "...")
		}
	}
	return alignCell(s, width, align)
}

func alignCell(s string, width int, align Alignment) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", pad) + s
	case AlignCenter:
		left := pad / 2
		right := pad - left
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
	default:
		return s + strings.Repeat(" ", pad)
	}
}

func (b BorderStyle) String() string {
	for name, style := range borderNames {
		if style == b {
			return name
		}
	}
	return fmt.Sprintf("BorderStyle(%d)", int(b))
}
