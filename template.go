package staged

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// DefaultTemplate is the name that marks a template as the process-wide
// fallback.
const DefaultTemplate = "default"

// Fragments groups option fields by sub-renderer name, e.g. "table" or
// "column".
type Fragments map[string]map[string]any

// Template is a named bundle of default option fragments. Its fragments are
// already resolved against its parent chain.
type Template struct {
	name      string
	parent    string
	fragments Fragments
}

// Name returns the template's name.
func (t *Template) Name() string { return t.name }

// Parent returns the parent template's name, or "".
func (t *Template) Parent() string { return t.parent }

// Group returns a copy of one fragment group, or nil.
func (t *Template) Group(name string) map[string]any {
	g, ok := t.fragments[name]
	if !ok {
		return nil
	}
	return maps.Clone(g)
}

// Groups returns the fragment group names in sorted order.
func (t *Template) Groups() []string {
	return slices.Sorted(maps.Keys(t.fragments))
}

// Fill writes each field of the named groups into opts if that option is
// absent. With no groups given, every group is visited in sorted order.
// Values already present always win, so Fill is idempotent.
func (t *Template) Fill(opts *Options, groups ...string) {
	if t == nil || opts == nil {
		return
	}
	if len(groups) == 0 {
		groups = t.Groups()
	}
	for _, group := range groups {
		fields := t.fragments[group]
		for _, key := range slices.Sorted(maps.Keys(fields)) {
			if !opts.Has(key) {
				opts.Set(key, fields[key])
			}
		}
	}
}

// Templates is a registry of named templates.
type Templates struct {
	mu     sync.RWMutex
	byName map[string]*Template
}

// NewTemplates returns an empty template registry.
func NewTemplates() *Templates {
	return &Templates{byName: make(map[string]*Template)}
}

// Create defines a template. When parent is non-empty the parent's fragments
// seed the new template and fragments are layered on top per group, with the
// child's fields taking precedence. Creating an existing name replaces it.
func (r *Templates) Create(name, parent string, fragments Fragments) (*Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	resolved := make(Fragments)
	if parent != "" {
		p, ok := r.byName[parent]
		if !ok {
			return nil, fmt.Errorf("%w: parent %q of %q", ErrTemplateNotDefined, parent, name)
		}
		for group, fields := range p.fragments {
			resolved[group] = maps.Clone(fields)
		}
	}
	for group, fields := range fragments {
		dst, ok := resolved[group]
		if !ok {
			dst = make(map[string]any, len(fields))
			resolved[group] = dst
		}
		for k, v := range fields {
			dst[NormalizeKey(k)] = v
		}
	}

	t := &Template{name: name, parent: parent, fragments: resolved}
	r.byName[name] = t
	return t, nil
}

// Lookup returns the named template or [ErrTemplateNotDefined].
func (r *Templates) Lookup(name string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotDefined, name)
	}
	return t, nil
}

// Default returns the template named [DefaultTemplate], or nil.
func (r *Templates) Default() *Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[DefaultTemplate]
}

// Names returns the defined template names in sorted order.
func (r *Templates) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byName))
}

// Resolve selects the active template: the named one if name is non-empty,
// else the default, else nil.
func (r *Templates) Resolve(name string) (*Template, error) {
	if name != "" {
		return r.Lookup(name)
	}
	return r.Default(), nil
}
