package formats

import (
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/bjaus/staged"
)

// CSVFormat renders RFC 4180 records. The "delimiter" option replaces the
// comma with any single rune.
type CSVFormat struct {
	tableBase
	comma rune
}

// NewCSV returns a CSV handler.
func NewCSV() staged.Handler { return &CSVFormat{} }

func (c *CSVFormat) PrepareHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageTable: c.prepare}
}

func (c *CSVFormat) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{
		StageHeader: func() error { return c.writeRow(c.view.header) },
		StageBody:   c.buildBody,
		StageFooter: func() error { return c.writeRow(c.view.footer) },
	}
}

func (c *CSVFormat) prepare() error {
	if err := c.prepareTable(); err != nil {
		return err
	}
	c.comma = ','
	if d := c.Options().String(OptDelimiter); d != "" {
		r, size := utf8.DecodeRuneInString(d)
		if size != len(d) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			return fmt.Errorf("invalid %s %q: must be a single rune other than quote or newline", OptDelimiter, d)
		}
		c.comma = r
	}
	return nil
}

func (c *CSVFormat) buildBody() error {
	for _, row := range c.view.rows {
		if err := c.writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

// writeRow skips empty rows so a missing header or footer writes nothing.
func (c *CSVFormat) writeRow(row []string) error {
	if len(row) == 0 {
		return nil
	}
	return writeCSVRow(c, c.comma, row)
}

// writeCSVRow writes and flushes a single record, so every stage appends
// complete lines to the sink.
func writeCSVRow(w io.Writer, comma rune, row []string) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
