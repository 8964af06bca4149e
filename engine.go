package staged

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// Option configures an [Engine].
type Option func(*Engine)

// WithTemplates sets the template registry. Without it the engine starts with
// an empty one.
func WithTemplates(t *Templates) Option {
	return func(e *Engine) {
		if t != nil {
			e.templates = t
		}
	}
}

// WithLogger sets the logger for engine debug events. The default discards
// everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l.With().Str("component", "staged").Logger()
	}
}

// WithReports defines report types at construction. It panics on a
// duplicate name, which is a programming error at startup.
func WithReports(reports ...*ReportType) Option {
	return func(e *Engine) {
		for _, rt := range reports {
			if err := e.Define(rt); err != nil {
				panic(err)
			}
		}
	}
}

// Engine runs render calls against its registered report types and
// templates. Registries are populated during startup; render calls are safe
// to run concurrently because all per-call state is owned by the call.
type Engine struct {
	mu        sync.RWMutex
	reports   map[string]*ReportType
	bindings  map[reflect.Type]binding
	templates *Templates
	logger    zerolog.Logger
}

// New constructs an Engine.
func New(options ...Option) *Engine {
	e := &Engine{
		reports:   make(map[string]*ReportType),
		bindings:  make(map[reflect.Type]binding),
		templates: NewTemplates(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Templates returns the engine's template registry.
func (e *Engine) Templates() *Templates { return e.templates }

// Define registers a report type under its name. A second report type with
// the same name fails with [ErrReportDefined].
func (e *Engine) Define(rt *ReportType) error {
	if rt == nil || rt.Name() == "" {
		return fmt.Errorf("%w: report type name is required", ErrUnknownReport)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.reports[rt.Name()]; exists {
		return fmt.Errorf("%w: %q", ErrReportDefined, rt.Name())
	}
	e.reports[rt.Name()] = rt
	e.logger.Debug().Str("report", rt.Name()).Strs("formats", rt.Formats()).Msg("report defined")
	return nil
}

// Report returns the named report type or [ErrUnknownReport].
func (e *Engine) Report(name string) (*ReportType, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rt, ok := e.reports[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}
	return rt, nil
}

// Reports returns the defined report names in sorted order.
func (e *Engine) Reports() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Sorted(maps.Keys(e.reports))
}
