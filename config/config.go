// Package config loads template and report-default definitions from files and
// the environment, and applies them to a [staged.Engine].
//
// A definitions document looks like:
//
//	templates:
//	  default:
//	    table: { border: rounded }
//	  compact:
//	    parent: default
//	    table: { border: none, show_headings: false }
//	reports:
//	  table:
//	    defaults: { delimiter: ";" }
//
// Layers load in order, later layers winning: [Options.Defaults], each file
// in [Options.Files], then environment variables such as
// STAGED_TEMPLATES__COMPACT__TABLE__BORDER=ascii.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/bjaus/staged"
)

// DefaultEnvPrefix is the environment variable prefix read by [Load].
const DefaultEnvPrefix = "STAGED_"

// parentKey is the reserved template field naming the parent template.
const parentKey = "parent"

// Options controls [Load].
type Options struct {
	// Defaults is the lowest layer, keyed like the document itself.
	Defaults map[string]any
	// Files are loaded in order. Missing files are skipped; the format is
	// chosen by extension (.yaml, .yml, .toml).
	Files []string
	// EnvPrefix overrides DefaultEnvPrefix. A double underscore in a variable
	// name separates levels.
	EnvPrefix string
	// DisableEnv skips the environment layer.
	DisableEnv bool
	// Logger receives debug events. The zero value discards them.
	Logger *zerolog.Logger
}

// TemplateDef is one template definition.
type TemplateDef struct {
	Parent    string
	Fragments staged.Fragments
}

// ReportDef holds the configured defaults of one report type.
type ReportDef struct {
	Defaults map[string]any `koanf:"defaults"`
}

// Definitions is the merged result of every layer.
type Definitions struct {
	Templates map[string]TemplateDef
	Reports   map[string]ReportDef
}

type document struct {
	Templates map[string]map[string]any `koanf:"templates"`
	Reports   map[string]ReportDef      `koanf:"reports"`
}

// Load merges every layer and decodes the result.
func Load(opts Options) (*Definitions, error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "config").Logger()
	}

	k := koanf.New(".")
	if len(opts.Defaults) > 0 {
		if err := k.Load(confmap.Provider(opts.Defaults, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load defaults: %w", err)
		}
	}

	for _, path := range opts.Files {
		if _, err := os.Stat(path); err != nil {
			log.Debug().Str("path", path).Msg("config file skipped")
			continue
		}
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("config file loaded")
	}

	if !opts.DisableEnv {
		prefix := opts.EnvPrefix
		if prefix == "" {
			prefix = DefaultEnvPrefix
		}
		err := k.Load(env.Provider(prefix, ".", func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "__", ".")
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load env vars: %w", err)
		}
	}

	var doc document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal definitions: %w", err)
	}
	return newDefinitions(doc)
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config file %q: want .yaml, .yml or .toml", path)
	}
}

func newDefinitions(doc document) (*Definitions, error) {
	defs := &Definitions{
		Templates: make(map[string]TemplateDef, len(doc.Templates)),
		Reports:   make(map[string]ReportDef, len(doc.Reports)),
	}
	for name, fields := range doc.Templates {
		def := TemplateDef{Fragments: make(staged.Fragments)}
		for key, value := range fields {
			if key == parentKey {
				parent, ok := value.(string)
				if !ok {
					return nil, fmt.Errorf("template %q: parent must be a string, got %T", name, value)
				}
				def.Parent = parent
				continue
			}
			group, ok := value.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("template %q: group %q must be a mapping, got %T", name, key, value)
			}
			def.Fragments[key] = group
		}
		defs.Templates[name] = def
	}
	maps.Copy(defs.Reports, doc.Reports)
	return defs, nil
}

// DefaultPaths returns the candidate definition files for app in XDG config
// directories, lowest precedence first.
func DefaultPaths(app string) []string {
	dirs := slices.Clone(xdg.ConfigDirs)
	slices.Reverse(dirs)
	dirs = append(dirs, xdg.ConfigHome)

	var paths []string
	for _, dir := range dirs {
		for _, ext := range []string{"yaml", "yml", "toml"} {
			paths = append(paths, filepath.Join(dir, app, "templates."+ext))
		}
	}
	return paths
}

// Apply creates every template on e, parents before children, and merges
// report defaults into the report types already defined on e. Configured
// defaults replace defaults set in code.
func (d *Definitions) Apply(e *staged.Engine) error {
	state := make(map[string]int, len(d.Templates))
	const (
		visiting = 1
		done     = 2
	)
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: template %q inherits from itself", staged.ErrTemplateNotDefined, name)
		}
		state[name] = visiting
		def := d.Templates[name]
		if _, ok := d.Templates[def.Parent]; ok && def.Parent != "" {
			if err := visit(def.Parent); err != nil {
				return err
			}
		}
		if _, err := e.Templates().Create(name, def.Parent, def.Fragments); err != nil {
			return err
		}
		state[name] = done
		return nil
	}
	for _, name := range slices.Sorted(maps.Keys(d.Templates)) {
		if err := visit(name); err != nil {
			return err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(d.Reports)) {
		rt, err := e.Report(name)
		if err != nil {
			return err
		}
		rt.SetDefaults(d.Reports[name].Defaults)
	}
	return nil
}
