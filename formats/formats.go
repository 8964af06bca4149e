package formats

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bjaus/staged"
)

// Sentinel errors for programmatic error handling.
var (
	ErrMissingInterface = errors.New("missing required interface")
	ErrInvalidTemplate  = errors.New("invalid template")
)

// ReportName is the name of the report type returned by [NewTableReport].
const ReportName = "table"

// Stage names of the table report type.
const (
	StageTable  = "table"
	StageHeader = "table_header"
	StageBody   = "table_body"
	StageFooter = "table_footer"
)

// Format names registered by [NewTableReport].
const (
	Text       = "text"
	CSV        = "csv"
	TSV        = "tsv"
	HTML       = "html"
	Markdown   = "markdown"
	JSON       = "json"
	JSONL      = "jsonl"
	YAML       = "yaml"
	TOML       = "toml"
	XML        = "xml"
	List       = "list"
	GoTemplate = "template"
)

// Option keys read by the table handlers.
const (
	OptTitle        = "title"
	OptCaption      = "caption"
	OptShowHeadings = "show_headings"
	OptBorder       = "border"
	OptAlignment    = "alignment"
	OptMaxWidth     = "max_width"
	OptDelimiter    = "delimiter"
	OptSeparator    = "separator"
	OptIndent       = "indent"
	OptAllowMarkup  = "allow_markup"
	OptRowTemplate  = "row_template"
	OptRoot         = "root"
	OptRowElement   = "row_element"
)

// Template groups composed by the table report type, in precedence order.
const (
	GroupTable         = "table"
	GroupColumn        = "column"
	GroupFormatOptions = "format_options"
)

// NewTableReport returns the built-in "table" report type with every format
// in this package registered.
//
// Lifecycle: prepare "table" → "table_header", "table_body", "table_footer"
// → finalize "table".
func NewTableReport() *staged.ReportType {
	rt := staged.NewReportType(ReportName).
		Stages(StageHeader, StageBody, StageFooter).
		TemplateGroups(GroupTable, GroupColumn, GroupFormatOptions)
	if err := rt.PrepareStage(StageTable); err != nil {
		panic(err)
	}
	if err := rt.FinalizeStage(StageTable); err != nil {
		panic(err)
	}
	rt.Register(Text, NewText).
		Register(CSV, NewCSV).
		RegisterInline(TSV, NewCSV, tsvStages()).
		Register(HTML, NewHTML).
		Register(Markdown, NewMarkdown).
		Register(JSON, NewJSON).
		Register(JSONL, NewJSONL).
		Register(YAML, NewYAML).
		Register(TOML, NewTOML).
		Register(XML, NewXML).
		Register(List, NewList).
		Register(GoTemplate, NewGoTemplate)
	return rt
}

// --- Payload Interfaces ---

// Tabular provides row data. Required by every table format.
type Tabular interface {
	Rows() [][]string
}

// Headed provides column headers.
// Without it, formats render without a header row.
type Headed interface {
	Header() []string
}

// Titled renders a title above the table.
// Default: no title. The "title" option takes precedence.
type Titled interface {
	Title() string
}

// Footered renders a footer row below the table.
// Default: no footer.
type Footered interface {
	Footer() []string
}

// Aligned sets per-column alignment.
// Default: AlignLeft. The "alignment" option applies one alignment to all
// columns and takes precedence.
type Aligned interface {
	Alignments() []Alignment
}

// Captioned renders a line below the table.
// Default: no caption. The "caption" option takes precedence.
type Captioned interface {
	Caption() string
}

// --- Value Types ---

// BorderStyle controls table border characters.
type BorderStyle int

const (
	BorderRounded BorderStyle = iota // ╭─╮╰╯│┬┴├┤┼
	BorderNone                       // No borders, space-separated columns
	BorderASCII                      // +-+|
	BorderHeavy                      // ┏━┓┗┛┃┳┻┣┫╋
	BorderDouble                     // ╔═╗╚╝║╦╩╠╣╬
)

var borderNames = map[string]BorderStyle{
	"rounded": BorderRounded,
	"none":    BorderNone,
	"ascii":   BorderASCII,
	"heavy":   BorderHeavy,
	"double":  BorderDouble,
}

// ParseBorder converts a border name into a [BorderStyle].
func ParseBorder(s string) (BorderStyle, error) {
	if b, ok := borderNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return b, nil
	}
	return BorderRounded, fmt.Errorf("unknown border style %q", s)
}

// Alignment controls column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// ParseAlignment converts "left", "center" or "right" into an [Alignment].
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	default:
		return AlignLeft, fmt.Errorf("unknown alignment %q", s)
	}
}

// Table is a ready-made payload implementing every payload interface.
type Table struct {
	Heading string
	Columns []string
	Records [][]string
	Totals  []string
	Note    string
	Aligns  []Alignment
}

func (t Table) Title() string           { return t.Heading }
func (t Table) Header() []string        { return t.Columns }
func (t Table) Rows() [][]string        { return t.Records }
func (t Table) Footer() []string        { return t.Totals }
func (t Table) Caption() string         { return t.Note }
func (t Table) Alignments() []Alignment { return t.Aligns }

// Copy returns a deep copy. It satisfies [staged.Copier].
func (t Table) Copy() any {
	records := make([][]string, len(t.Records))
	for i, r := range t.Records {
		records[i] = slices.Clone(r)
	}
	return &Table{
		Heading: t.Heading,
		Columns: slices.Clone(t.Columns),
		Records: records,
		Totals:  slices.Clone(t.Totals),
		Note:    t.Note,
		Aligns:  slices.Clone(t.Aligns),
	}
}

// view is the normalized table every handler renders from.
type view struct {
	title   string
	columns []string
	header  []string
	rows    [][]string
	footer  []string
	caption string
	aligns  []Alignment
}

func newView(data any, opts *staged.Options, format string) (*view, error) {
	tab, ok := data.(Tabular)
	if !ok {
		return nil, fmt.Errorf("%w: format %q requires Tabular, not implemented by %T", ErrMissingInterface, format, data)
	}
	v := &view{rows: tab.Rows()}
	if h, ok := data.(Headed); ok {
		v.columns = h.Header()
		if opts.Bool(OptShowHeadings, true) {
			v.header = v.columns
		}
	}
	if t, ok := data.(Titled); ok {
		v.title = t.Title()
	}
	if f, ok := data.(Footered); ok {
		v.footer = f.Footer()
	}
	if c, ok := data.(Captioned); ok {
		v.caption = c.Caption()
	}
	if a, ok := data.(Aligned); ok {
		v.aligns = a.Alignments()
	}
	if s := opts.String(OptTitle); s != "" {
		v.title = s
	}
	if s := opts.String(OptCaption); s != "" {
		v.caption = s
	}
	if s := opts.String(OptAlignment); s != "" {
		align, err := ParseAlignment(s)
		if err != nil {
			return nil, err
		}
		v.aligns = make([]Alignment, v.numCols())
		for i := range v.aligns {
			v.aligns[i] = align
		}
	}
	return v, nil
}

func (v *view) numCols() int {
	return colCount(v.header, v.rows, v.footer)
}

// keys names the first n columns for record-shaped formats. Columns without
// a header are named "col1", "col2", ...
func (v *view) keys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		if i < len(v.columns) && v.columns[i] != "" {
			keys[i] = v.columns[i]
		} else {
			keys[i] = fmt.Sprintf("col%d", i+1)
		}
	}
	return keys
}

// tableBase is embedded by every table handler. It prepares the view and opts
// in to template defaulting.
type tableBase struct {
	staged.Formatter
	view *view
}

func (b *tableBase) PrepareHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageTable: b.prepareTable}
}

// ApplyTemplate opts in to template defaulting. The engine has already filled
// absent options from the template's groups.
func (b *tableBase) ApplyTemplate(*staged.Template) error { return nil }

func (b *tableBase) prepareTable() error {
	v, err := newView(b.Data(), b.Options(), b.Format())
	if err != nil {
		return err
	}
	b.view = v
	return nil
}
