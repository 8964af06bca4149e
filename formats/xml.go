package formats

import (
	"strings"
	"unicode"

	"github.com/beevik/etree"

	"github.com/bjaus/staged"
)

// XMLFormat renders the table as an XML document. Each stage appends to the
// document tree; the finalizer serializes it.
//
//	<table title="People">
//	  <header><column>Name</column></header>
//	  <row><Name>Alice</Name></row>
//	  <footer><Name>Total</Name></footer>
//	</table>
//
// The root and row element names come from the "root" and "row_element"
// options. Column names are turned into valid element names.
type XMLFormat struct {
	tableBase
	doc     *etree.Document
	root    *etree.Element
	rowName string
}

// NewXML returns an XML handler.
func NewXML() staged.Handler { return &XMLFormat{} }

func (x *XMLFormat) PrepareHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageTable: x.prepare}
}

func (x *XMLFormat) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{
		StageHeader: x.buildHeader,
		StageBody:   x.buildBody,
		StageFooter: x.buildFooter,
	}
}

func (x *XMLFormat) FinalizeHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageTable: x.finalizeTable}
}

func (x *XMLFormat) prepare() error {
	if err := x.prepareTable(); err != nil {
		return err
	}
	rootName := xmlName(x.Options().String(OptRoot), "table")
	x.rowName = xmlName(x.Options().String(OptRowElement), "row")

	x.doc = etree.NewDocument()
	x.doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	x.root = x.doc.CreateElement(rootName)
	if x.view.title != "" {
		x.root.CreateAttr("title", x.view.title)
	}
	return nil
}

func (x *XMLFormat) buildHeader() error {
	if len(x.view.header) == 0 {
		return nil
	}
	header := x.root.CreateElement("header")
	for _, col := range x.view.header {
		header.CreateElement("column").SetText(col)
	}
	return nil
}

func (x *XMLFormat) buildBody() error {
	for _, row := range x.view.rows {
		x.appendRecord(x.rowName, row)
	}
	return nil
}

func (x *XMLFormat) buildFooter() error {
	if len(x.view.footer) > 0 {
		x.appendRecord("footer", x.view.footer)
	}
	return nil
}

func (x *XMLFormat) finalizeTable() error {
	if x.view.caption != "" {
		x.root.CreateElement("caption").SetText(x.view.caption)
	}
	return nil
}

// Finalize serializes the document to the sink.
func (x *XMLFormat) Finalize() error {
	if x.doc == nil {
		return nil
	}
	spaces := 2
	if x.Options().Has(OptIndent) {
		spaces = len(indentOption(x.Options()))
	}
	x.doc.Indent(spaces)
	_, err := x.doc.WriteTo(x)
	return err
}

func (x *XMLFormat) appendRecord(tag string, cells []string) {
	r := x.view.record(cells)
	el := x.root.CreateElement(tag)
	for i, k := range r.keys {
		el.CreateElement(xmlName(k, "col")).SetText(r.values[i])
	}
}

// xmlName maps s to a valid XML element name. Invalid runes become
// underscores; an invalid first rune gets an underscore prefix.
func xmlName(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	var sb strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		case i == 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
			sb.WriteByte('_')
		default:
			r = '_'
		}
		sb.WriteRune(r)
	}
	name := sb.String()
	if strings.HasPrefix(strings.ToLower(name), "xml") {
		name = "_" + name
	}
	return name
}
