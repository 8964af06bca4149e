package staged

import (
	"fmt"
	"maps"
	"path/filepath"
	"reflect"
	"strings"
)

// Transformer lets a producer supply a per-format payload instead of being
// rendered verbatim.
type Transformer interface {
	RenderData(format string) (any, error)
}

type binding struct {
	report   string
	defaults map[string]any
}

// Bind declares, once per producer type T, the report type its values render
// through and the default options they carry. T is matched against the
// dynamic type of the producer passed to [Engine.As]; a pointer to T also
// matches when *T itself is not bound.
// Binding T again replaces the previous declaration.
func Bind[T any](e *Engine, report string, defaults map[string]any) error {
	if _, err := e.Report(report); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bindings[reflect.TypeFor[T]()] = binding{report: report, defaults: maps.Clone(defaults)}
	return nil
}

func (e *Engine) bindingFor(producer any) (binding, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t := reflect.TypeOf(producer)
	if b, ok := e.bindings[t]; ok {
		return b, nil
	}
	if t != nil && t.Kind() == reflect.Pointer {
		if b, ok := e.bindings[t.Elem()]; ok {
			return b, nil
		}
		return binding{}, fmt.Errorf("%w: neither %v nor %v is bound", ErrReportNotSet, t, t.Elem())
	}
	return binding{}, fmt.Errorf("%w: %T", ErrReportNotSet, producer)
}

// As renders producer in the named format through the report type bound to
// its type. The binding's defaults sit under opts, so caller options win.
func (e *Engine) As(producer any, format string, opts ...RenderOption) ([]byte, error) {
	b, err := e.bindingFor(producer)
	if err != nil {
		return nil, err
	}
	rt, err := e.Report(b.report)
	if err != nil {
		return nil, err
	}
	if !rt.HasFormat(format) {
		return nil, fmt.Errorf("%w: %q for report %q", ErrUnknownFormat, format, rt.Name())
	}

	var data any = producer
	if t, ok := producer.(Transformer); ok {
		data, err = t.RenderData(format)
		if err != nil {
			return nil, err
		}
	}

	all := make([]RenderOption, 0, len(opts)+2)
	all = append(all, WithOptions(b.defaults), WithData(data))
	all = append(all, opts...)
	return e.RenderType(rt, format, all...)
}

// SaveAs renders producer in the format named by path's extension and saves
// the output to path.
func (e *Engine) SaveAs(producer any, path string, opts ...RenderOption) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	all := make([]RenderOption, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, WithFile(path))
	_, err := e.As(producer, format, all...)
	return err
}

// Producer pairs a value with an engine so it can render itself.
type Producer[T any] struct {
	engine *Engine
	value  T
}

// Wrap returns a Producer for v. T must have been bound with [Bind].
func Wrap[T any](e *Engine, v T) Producer[T] {
	return Producer[T]{engine: e, value: v}
}

// Value returns the wrapped value.
func (p Producer[T]) Value() T { return p.value }

// As renders the wrapped value in the named format.
func (p Producer[T]) As(format string, opts ...RenderOption) ([]byte, error) {
	return p.engine.As(p.value, format, opts...)
}

// SaveAs renders the wrapped value and saves it to path.
func (p Producer[T]) SaveAs(path string, opts ...RenderOption) error {
	return p.engine.SaveAs(p.value, path, opts...)
}
