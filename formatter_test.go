package staged_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/staged"
)

type copyCounter struct {
	n *int
}

func (c copyCounter) Copy() any {
	*c.n++
	return copyCounter{n: c.n}
}

func TestFormatterSetDataUsesCopier(t *testing.T) {
	t.Parallel()
	n := 0
	var f staged.Formatter
	require.NoError(t, f.SetData(copyCounter{n: &n}))
	assert.Equal(t, 1, n)
	assert.IsType(t, copyCounter{}, f.Data())
}

func TestFormatterSetDataDeepCopies(t *testing.T) {
	t.Parallel()
	src := map[string][]string{"k": {"a"}}
	var f staged.Formatter
	require.NoError(t, f.SetData(src))

	cp := f.Data().(map[string][]string)
	cp["k"][0] = "changed"
	cp["new"] = nil
	assert.Equal(t, map[string][]string{"k": {"a"}}, src)

	require.NoError(t, f.SetData(nil))
	assert.Nil(t, f.Data())
}

// sealed keeps its state in unexported fields.
type sealed struct {
	rows [][]string
	note string
}

type stamped struct {
	At   time.Time
	Tags []string
}

func TestFormatterSetDataKeepsUnexportedFields(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		in any
	}{
		"value":   {in: sealed{rows: [][]string{{"a", "b"}}, note: "n"}},
		"pointer": {in: &sealed{rows: [][]string{{"a", "b"}}, note: "n"}},
		"nested":  {in: []sealed{{rows: [][]string{{"a", "b"}}, note: "n"}}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var f staged.Formatter
			require.NoError(t, f.SetData(tt.in))
			assert.Equal(t, tt.in, f.Data())
		})
	}
}

func TestFormatterSetDataCopiesPointerTarget(t *testing.T) {
	t.Parallel()
	src := &sealed{rows: [][]string{{"a"}}, note: "before"}
	var f staged.Formatter
	require.NoError(t, f.SetData(src))

	got := f.Data().(*sealed)
	assert.NotSame(t, src, got)
	src.note = "after"
	src.rows = nil
	assert.Equal(t, "before", got.note)
	assert.Equal(t, [][]string{{"a"}}, got.rows)
}

func TestFormatterSetDataDeepCopiesTimes(t *testing.T) {
	t.Parallel()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	src := stamped{At: at, Tags: []string{"x"}}
	var f staged.Formatter
	require.NoError(t, f.SetData(src))

	got := f.Data().(stamped)
	assert.True(t, at.Equal(got.At))
	got.Tags[0] = "changed"
	assert.Equal(t, []string{"x"}, src.Tags)
}

func TestFormatterSink(t *testing.T) {
	t.Parallel()
	var f staged.Formatter
	assert.Same(t, &f, f.Base())

	_, err := f.WriteString("a")
	require.NoError(t, err)
	_, err = f.Write([]byte("b"))
	require.NoError(t, err)
	require.NoError(t, f.Printf("%d", 1))
	require.NoError(t, f.Println())
	assert.Equal(t, "ab1\n", string(f.Output()))

	f.Clear()
	assert.Empty(t, f.Output())
	assert.NotNil(t, f.Options())
}

func TestFormatterSaveOutput(t *testing.T) {
	t.Parallel()
	var f staged.Formatter
	_, err := f.WriteString("line\n")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old content that is longer"), 0o644))
	require.NoError(t, f.SaveOutput(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "line")
	assert.NotContains(t, string(got), "old")
}
