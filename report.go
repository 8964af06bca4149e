package staged

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// ReportType is a named lifecycle descriptor: the ordered build stages, the
// optional prepare and finalize stages, the required options, the default
// options, and the format map.
//
// Populate a ReportType during startup. Mutators are safe to call
// concurrently, and every render works from a snapshot taken at bind time.
type ReportType struct {
	mu       sync.RWMutex
	name     string
	stages   []string
	prepare  string
	finalize string
	required []string
	groups   []string
	defaults *Options
	formats  map[string]format
}

// format is the descriptor stored in the format map. Inline formats carry
// build-stage closures layered over the base handler's hooks.
type format struct {
	factory HandlerFactory
	inline  map[string]StageFunc
}

// NewReportType returns an empty report type.
func NewReportType(name string) *ReportType {
	return &ReportType{
		name:     name,
		defaults: NewOptions(nil),
		formats:  make(map[string]format),
	}
}

// Name returns the report type's name.
func (r *ReportType) Name() string { return r.name }

// Stages appends build stages. Repeated calls accumulate.
func (r *ReportType) Stages(names ...string) *ReportType {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, names...)
	return r
}

// PrepareStage declares the stage whose prepare hook runs first. It fails with
// [ErrStageAlreadyDefined] if one was already declared.
func (r *ReportType) PrepareStage(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.prepare != "" {
		return fmt.Errorf("%w: prepare stage %q on report %q", ErrStageAlreadyDefined, r.prepare, r.name)
	}
	r.prepare = name
	return nil
}

// FinalizeStage declares the stage whose finalize hook runs last. It fails
// with [ErrStageAlreadyDefined] if one was already declared.
func (r *ReportType) FinalizeStage(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalize != "" {
		return fmt.Errorf("%w: finalize stage %q on report %q", ErrStageAlreadyDefined, r.finalize, r.name)
	}
	r.finalize = name
	return nil
}

// Require adds required option names. Duplicates collapse; the first
// declaration fixes the order in which options are checked.
func (r *ReportType) Require(names ...string) *ReportType {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		r.required = append(r.required, NormalizeKey(name))
	}
	r.required = lo.Uniq(r.required)
	return r
}

// TemplateGroups names the template fragment groups this report type
// composes, in precedence order. With no groups declared, every group of the
// resolved template applies.
func (r *ReportType) TemplateGroups(names ...string) *ReportType {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = lo.Uniq(append(r.groups, names...))
	return r
}

// SetDefault sets a class-level default option.
func (r *ReportType) SetDefault(key string, value any) *ReportType {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults.Set(key, value)
	return r
}

// SetDefaults sets several class-level default options.
func (r *ReportType) SetDefaults(values map[string]any) *ReportType {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range values {
		r.defaults.Set(k, v)
	}
	return r
}

// Defaults returns a copy of the default options.
func (r *ReportType) Defaults() *Options {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults.Clone()
}

// Register maps a format name to a handler factory. Registering the same name
// again replaces the previous handler.
func (r *ReportType) Register(name string, factory HandlerFactory) *ReportType {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats[name] = format{factory: factory}
	return r
}

// RegisterInline registers a one-off format that behaves like base with the
// given build stages added or replaced.
//
//	rt.RegisterInline("tsv", NewCSV, map[string]staged.StageFunc{
//		"body": func(h staged.Handler) error { ... },
//	})
func (r *ReportType) RegisterInline(name string, base HandlerFactory, stages map[string]StageFunc) *ReportType {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats[name] = format{factory: base, inline: maps.Clone(stages)}
	return r
}

// HasFormat reports whether a handler is registered for name.
func (r *ReportType) HasFormat(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.formats[name]
	return ok
}

// Formats returns the registered format names in sorted order.
func (r *ReportType) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.formats))
}

// StageNames returns the build stages in declaration order.
func (r *ReportType) StageNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.stages)
}

// PrepareName returns the declared prepare stage, or "".
func (r *ReportType) PrepareName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prepare
}

// FinalizeName returns the declared finalize stage, or "".
func (r *ReportType) FinalizeName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finalize
}

// Required returns the required option names.
func (r *ReportType) Required() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.required)
}

// snapshot is the immutable view of a report type used by one render call.
type snapshot struct {
	name     string
	stages   []string
	prepare  string
	finalize string
	required []string
	groups   []string
	defaults *Options
	format   format
}

func (r *ReportType) snapshot(formatName string) (*snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formats[formatName]
	if !ok || f.factory == nil {
		return nil, fmt.Errorf("%w: %q for report %q", ErrUnknownFormat, formatName, r.name)
	}
	return &snapshot{
		name:     r.name,
		stages:   slices.Clone(r.stages),
		prepare:  r.prepare,
		finalize: r.finalize,
		required: slices.Clone(r.required),
		groups:   slices.Clone(r.groups),
		defaults: r.defaults.Clone(),
		format:   f,
	}, nil
}
