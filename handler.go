package staged

// Handler is a format handler bound to exactly one render call. Handlers
// embed [Formatter], which supplies Base.
type Handler interface {
	Base() *Formatter
}

// HandlerFactory creates a fresh handler for one render call.
type HandlerFactory func() Handler

// Hook is the body of a stage hook.
type Hook func() error

// StageFunc is a build-stage body registered with
// [ReportType.RegisterInline]. It receives the base handler instance.
type StageFunc func(h Handler) error

// --- Optional capabilities ---
//
// The engine checks each of these once at bind time. A missing capability or
// a stage missing from a hook map is a no-op, never an error.

// Preparer supplies prepare hooks keyed by stage name.
type Preparer interface {
	PrepareHooks() map[string]Hook
}

// Builder supplies build hooks keyed by stage name.
type Builder interface {
	BuildHooks() map[string]Hook
}

// StageFinalizer supplies finalize hooks keyed by stage name.
type StageFinalizer interface {
	FinalizeHooks() map[string]Hook
}

// Finalizer runs after every stage, whether or not the report type declares
// a finalize stage.
type Finalizer interface {
	Finalize() error
}

// TemplateApplier signals template support. ApplyTemplate runs after the
// engine has filled absent options from the resolved template.
type TemplateApplier interface {
	ApplyTemplate(t *Template) error
}

// Layouter wraps the build stages. Layout must call build to run them.
type Layouter interface {
	Layout(build func() error) error
}

// BinaryOutput marks a handler whose saved output is written in binary mode.
type BinaryOutput interface {
	BinaryOutput() bool
}

// Copier lets a payload produce its own deep copy. Payloads that do not
// implement it are copied as described on [Formatter.SetData].
type Copier interface {
	Copy() any
}

// dispatch is the capability table built once per bind.
type dispatch struct {
	prepare  map[string]Hook
	build    map[string]Hook
	finalize map[string]Hook
	final    func() error
	layout   func(func() error) error
	template func(*Template) error
	binary   bool
}

func newDispatch(h Handler, inline map[string]StageFunc) *dispatch {
	d := &dispatch{}
	if p, ok := h.(Preparer); ok {
		d.prepare = p.PrepareHooks()
	}
	if b, ok := h.(Builder); ok {
		d.build = b.BuildHooks()
	}
	if f, ok := h.(StageFinalizer); ok {
		d.finalize = f.FinalizeHooks()
	}
	if f, ok := h.(Finalizer); ok {
		d.final = f.Finalize
	}
	if l, ok := h.(Layouter); ok {
		d.layout = l.Layout
	}
	if t, ok := h.(TemplateApplier); ok {
		d.template = t.ApplyTemplate
	}
	if b, ok := h.(BinaryOutput); ok {
		d.binary = b.BinaryOutput()
	}
	if len(inline) > 0 {
		merged := make(map[string]Hook, len(d.build)+len(inline))
		for stage, hook := range d.build {
			merged[stage] = hook
		}
		for stage, fn := range inline {
			merged[stage] = func() error { return fn(h) }
		}
		d.build = merged
	}
	return d
}

func run(hooks map[string]Hook, stage string) error {
	if stage == "" {
		return nil
	}
	if hook, ok := hooks[stage]; ok && hook != nil {
		return hook()
	}
	return nil
}
