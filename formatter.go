package staged

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"runtime"

	"github.com/mitchellh/copystructure"

	"github.com/bjaus/staged/internal/fsutil"
)

// Formatter is the state every handler carries: the payload copy, the bound
// options, and the append-only output sink. Embed it in handler types:
//
//	type CSV struct {
//		staged.Formatter
//	}
//
// Output goes to an internal buffer unless the options name an external
// writer under [OptionIO].
type Formatter struct {
	data    any
	options *Options
	buf     bytes.Buffer
	report  string
	format  string
	binary  bool
}

// Base returns f. It lets any type embedding Formatter satisfy [Handler].
func (f *Formatter) Base() *Formatter { return f }

// Data returns the handler's private copy of the payload.
func (f *Formatter) Data() any { return f.data }

// SetData stores a copy of v. Payloads implementing [Copier] copy
// themselves. Others are deep-copied structurally, except types holding
// unexported fields, which the structural copy cannot reach: they get a
// value copy, so reassigning their fields never affects v but shared
// slices and maps stay shared. Implement [Copier] for full isolation.
func (f *Formatter) SetData(v any) error {
	if v == nil {
		f.data = nil
		return nil
	}
	if c, ok := v.(Copier); ok {
		f.data = c.Copy()
		return nil
	}
	if hasUnexported(reflect.TypeOf(v), make(map[reflect.Type]bool)) {
		f.data = valueCopy(v)
		return nil
	}
	cp, err := copystructure.Copy(v)
	if err != nil {
		return fmt.Errorf("copy payload %T: %w", v, err)
	}
	f.data = cp
	return nil
}

// hasUnexported reports whether values of t can hold unexported struct
// fields. Types with a registered copystructure copier are handled there.
func hasUnexported(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true
	if _, ok := copystructure.Copiers[t]; ok {
		return false
	}
	if _, ok := copystructure.ShallowCopiers[t]; ok {
		return false
	}
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			field := t.Field(i)
			if !field.IsExported() || hasUnexported(field.Type, seen) {
				return true
			}
		}
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return hasUnexported(t.Elem(), seen)
	case reflect.Map:
		return hasUnexported(t.Key(), seen) || hasUnexported(t.Elem(), seen)
	}
	return false
}

// valueCopy copies the value behind a pointer into a fresh one. Non-pointer
// values are already copies once boxed in an interface.
func valueCopy(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return v
	}
	cp := reflect.New(rv.Elem().Type())
	cp.Elem().Set(rv.Elem())
	return cp.Interface()
}

// Options returns the bag bound to this call.
func (f *Formatter) Options() *Options {
	if f.options == nil {
		f.options = NewOptions(nil)
	}
	return f.options
}

// Report returns the name of the report type being rendered.
func (f *Formatter) Report() string { return f.report }

// Format returns the format name being rendered.
func (f *Formatter) Format() string { return f.format }

// sink returns the writer that output operations target. An external writer
// that cannot hand its content back is teed into the internal buffer so the
// output can still be saved.
func (f *Formatter) sink() io.Writer {
	w := f.options.Writer(OptionIO)
	if w == nil {
		return &f.buf
	}
	if _, ok := w.(byteSource); ok {
		return w
	}
	return io.MultiWriter(w, &f.buf)
}

type byteSource interface {
	Bytes() []byte
}

// Write appends p to the output sink.
func (f *Formatter) Write(p []byte) (int, error) {
	return f.sink().Write(p)
}

// WriteString appends s to the output sink.
func (f *Formatter) WriteString(s string) (int, error) {
	return io.WriteString(f.sink(), s)
}

// Printf appends formatted text to the output sink.
func (f *Formatter) Printf(format string, args ...any) error {
	_, err := fmt.Fprintf(f.sink(), format, args...)
	return err
}

// Println appends the operands and a newline to the output sink.
func (f *Formatter) Println(args ...any) error {
	_, err := fmt.Fprintln(f.sink(), args...)
	return err
}

// Output returns the accumulated output. When an external writer is bound,
// its content is returned if it exposes Bytes, otherwise nil.
func (f *Formatter) Output() []byte {
	if w := f.options.Writer(OptionIO); w != nil {
		if b, ok := w.(byteSource); ok {
			return b.Bytes()
		}
		return nil
	}
	return f.buf.Bytes()
}

// Clear resets the sink to empty.
func (f *Formatter) Clear() {
	if w := f.options.Writer(OptionIO); w != nil {
		if r, ok := w.(interface{ Reset() }); ok {
			r.Reset()
		}
	}
	f.buf.Reset()
}

// SaveOutput writes the full output to path in one shot. Text-mode handlers
// get platform line endings; binary handlers are written verbatim.
func (f *Formatter) SaveOutput(path string) error {
	content := f.Output()
	if w := f.options.Writer(OptionIO); w != nil {
		if _, ok := w.(byteSource); !ok {
			content = f.buf.Bytes()
		}
	}
	if !f.binary && runtime.GOOS == "windows" {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		content = bytes.ReplaceAll(content, []byte("\n"), []byte("\r\n"))
	}
	return fsutil.WriteAtomic(path, content, 0)
}

// bind attaches the per-call state. The buffer starts empty.
func (f *Formatter) bind(report, format string, options *Options, binary bool) {
	f.report = report
	f.format = format
	f.options = options
	f.binary = binary
	f.buf.Reset()
}
