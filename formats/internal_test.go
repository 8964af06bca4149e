package formats

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errInternalWrite = errors.New("write failed")

func TestFormatTableCellTruncates(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input string
		width int
		align Alignment
		want  string
	}{
		"fits left":       {input: "hi", width: 4, align: AlignLeft, want: "hi  "},
		"fits right":      {input: "hi", width: 4, align: AlignRight, want: "  hi"},
		"fits center":     {input: "hi", width: 5, align: AlignCenter, want: " hi  "},
		"ellipsis":        {input: "Hello, world", width: 8, want: "Hello..."},
		"narrow no dots":  {input: "Hello", width: 3, want: "Hel"},
		"zero width":      {input: "Hello", width: 0, want: "Hello"},
		"wide characters": {input: "你好世界", width: 5, want: "你..."},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, formatTableCell(tt.input, tt.width, tt.align))
		})
	}
}

func TestExtendAligns(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []Alignment{AlignRight, AlignLeft, AlignLeft}, extendAligns([]Alignment{AlignRight}, 3))
	assert.Len(t, extendAligns([]Alignment{AlignRight, AlignRight, AlignRight}, 2), 2)
}

func TestTableInnerWidth(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, tableInnerWidth(nil))
	assert.Equal(t, 7, tableInnerWidth([]int{5}))
	assert.Equal(t, 13, tableInnerWidth([]int{5, 3}))
}

func TestColCount(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 3, colCount([]string{"a"}, [][]string{{"a", "b"}}, []string{"a", "b", "c"}))
	assert.Equal(t, 0, colCount(nil, nil, nil))
}

func TestViewKeys(t *testing.T) {
	t.Parallel()
	v := &view{columns: []string{"Name", ""}}
	assert.Equal(t, []string{"Name", "col2", "col3"}, v.keys(3))
}

func TestXMLName(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input string
		want  string
	}{
		"empty":         {input: "  ", want: "fallback"},
		"plain":         {input: "Name", want: "Name"},
		"space":         {input: "First Name", want: "First_Name"},
		"leading digit": {input: "1st", want: "_1st"},
		"inner digit":   {input: "col2", want: "col2"},
		"punctuation":   {input: "a/b:c", want: "a_b_c"},
		"reserved":      {input: "xmlData", want: "_xmlData"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, xmlName(tt.input, "fallback"))
		})
	}
}

func TestWriteCSVRowSuccess(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := writeCSVRow(&buf, ',', []string{"a", "b"})
	assert.NoError(t, err)
	assert.Equal(t, "a,b\n", buf.String())
}

func TestWriteCSVRowDelimiter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := writeCSVRow(&buf, '|', []string{"a", "b|c"})
	assert.NoError(t, err)
	assert.Equal(t, "a|\"b|c\"\n", buf.String())
}

func TestWriteCSVRowError(t *testing.T) {
	t.Parallel()
	w := &errWriterInternal{}
	// Small data: flush error hit via cw.Error().
	err := writeCSVRow(w, ',', []string{"a", "b"})
	assert.ErrorIs(t, err, errInternalWrite)
}

func TestWriteCSVRowLargeDataError(t *testing.T) {
	t.Parallel()
	w := &errWriterInternal{}
	// Large data exceeds bufio buffer (4096 bytes), causing cw.Write to fail.
	big := strings.Repeat("x", 5000)
	err := writeCSVRow(w, ',', []string{big})
	assert.Error(t, err)
}

type errWriterInternal struct{}

func (e *errWriterInternal) Write([]byte) (int, error) {
	return 0, errInternalWrite
}
