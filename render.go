package staged

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// RenderOption customises one render call. Options apply in order, so later
// options win over earlier ones.
type RenderOption func(*request)

type override struct {
	key   string
	value any
}

type request struct {
	data      any
	hasData   bool
	overrides []override
}

// WithData sets the payload. The handler receives a copy.
func WithData(v any) RenderOption {
	return func(r *request) {
		r.data = v
		r.hasData = true
	}
}

// WithOption overrides a single option.
func WithOption(key string, value any) RenderOption {
	return func(r *request) {
		r.overrides = append(r.overrides, override{key: key, value: value})
	}
}

// WithOptions overrides several options. Keys are applied in sorted order;
// use [WithOption] when order between aliases of one key matters.
func WithOptions(values map[string]any) RenderOption {
	return func(r *request) {
		for _, k := range slices.Sorted(maps.Keys(values)) {
			r.overrides = append(r.overrides, override{key: k, value: values[k]})
		}
	}
}

// WithTemplate selects a named template.
func WithTemplate(name string) RenderOption {
	return WithOption(OptionTemplate, name)
}

// WithoutTemplate disables templating for the call.
func WithoutTemplate() RenderOption {
	return WithOption(OptionTemplate, false)
}

// WithoutLayout runs the build stages without the handler's layout.
func WithoutLayout() RenderOption {
	return WithOption(OptionLayout, false)
}

// WithWriter sends output to w instead of the internal buffer.
func WithWriter(w io.Writer) RenderOption {
	return WithOption(OptionIO, w)
}

// WithFile saves the output to path after the final stage.
func WithFile(path string) RenderOption {
	return WithOption(OptionFile, path)
}

// Render renders the named report type in the given format.
func (e *Engine) Render(report, format string, opts ...RenderOption) ([]byte, error) {
	rt, err := e.Report(report)
	if err != nil {
		return nil, err
	}
	return e.RenderType(rt, format, opts...)
}

// RenderType renders rt in the given format. It runs, in order: bind,
// required-option validation, template defaulting, the prepare stage, the
// build stages (wrapped by the handler's layout), the finalize stage, the
// generic finalizer, and the optional save to file.
//
// Errors returned by hooks are passed through unchanged.
func (e *Engine) RenderType(rt *ReportType, format string, opts ...RenderOption) ([]byte, error) {
	if rt == nil {
		return nil, fmt.Errorf("%w: report type is nil", ErrUnknownReport)
	}
	req := &request{}
	for _, opt := range opts {
		if opt != nil {
			opt(req)
		}
	}

	snap, err := rt.snapshot(format)
	if err != nil {
		return nil, err
	}
	h := snap.format.factory()
	if h == nil || h.Base() == nil {
		return nil, fmt.Errorf("%w: %q for report %q: handler cannot be instantiated", ErrUnknownFormat, format, snap.name)
	}
	d := newDispatch(h, snap.format.inline)
	base := h.Base()
	options := snap.defaults
	base.bind(snap.name, format, options, d.binary)
	if req.hasData {
		if err := base.SetData(req.data); err != nil {
			return nil, err
		}
	}
	for _, o := range req.overrides {
		options.Set(o.key, o.value)
	}

	log := e.logger.With().Str("report", snap.name).Str("format", format).Logger()
	log.Debug().Strs("options", options.Keys()).Msg("render bound")

	for _, name := range snap.required {
		if !options.Has(name) {
			return nil, fmt.Errorf("%w: %q for report %q", ErrRequiredOptionNotSet, name, snap.name)
		}
	}

	if d.template != nil {
		if name, enabled := templateChoice(options); enabled {
			t, err := e.templates.Resolve(name)
			if err != nil {
				return nil, err
			}
			if t != nil {
				t.Fill(options, snap.groups...)
				log.Debug().Str("template", t.Name()).Msg("template applied")
				if err := d.template(t); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := run(d.prepare, snap.prepare); err != nil {
		return nil, err
	}

	build := func() error {
		for _, stage := range snap.stages {
			log.Debug().Str("stage", stage).Msg("build stage")
			if err := run(d.build, stage); err != nil {
				return err
			}
		}
		return nil
	}
	if d.layout != nil && options.Bool(OptionLayout, true) {
		err = d.layout(build)
	} else {
		err = build()
	}
	if err != nil {
		return nil, err
	}

	if err := run(d.finalize, snap.finalize); err != nil {
		return nil, err
	}
	if d.final != nil {
		if err := d.final(); err != nil {
			return nil, err
		}
	}

	if path := options.String(OptionFile); path != "" {
		if err := base.SaveOutput(path); err != nil {
			return nil, fmt.Errorf("save output: %w", err)
		}
		log.Debug().Str("path", path).Bool("binary", d.binary).Msg("output saved")
	}
	return base.Output(), nil
}

// templateChoice reads the template option. An explicit false (or the string
// "false") disables templating; a name selects a template; anything else
// selects the default.
func templateChoice(options *Options) (string, bool) {
	v, ok := options.Get(OptionTemplate)
	if !ok {
		return "", true
	}
	switch t := v.(type) {
	case bool:
		return "", t
	case string:
		if strings.EqualFold(strings.TrimSpace(t), "false") {
			return "", false
		}
		return strings.TrimSpace(t), true
	default:
		return "", true
	}
}
