package formats

import (
	"gopkg.in/yaml.v3"

	"github.com/bjaus/staged"
)

// YAMLFormat renders the body rows as a YAML sequence of mappings. Column
// order is kept and every value is tagged as a string.
type YAMLFormat struct {
	tableBase
}

// NewYAML returns a YAML handler.
func NewYAML() staged.Handler { return &YAMLFormat{} }

func (y *YAMLFormat) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{StageBody: y.buildBody}
}

func (y *YAMLFormat) buildBody() error {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, row := range y.view.rows {
		seq.Content = append(seq.Content, y.view.record(row).yamlNode())
	}
	enc := yaml.NewEncoder(y)
	if n := len(indentOption(y.Options())); n > 0 {
		enc.SetIndent(n)
	}
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

func (r record) yamlNode() *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i, k := range r.keys {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.values[i]},
		)
	}
	return m
}
