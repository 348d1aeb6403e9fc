package converter

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonkit/internal/models"
)

// toYAML renders v as block-style YAML. Strings are always double-quoted;
// numbers, booleans and null are written plain. Empty arrays and objects
// come out inline as [] and {}. The trailing newline is dropped.
func (c *Converter) toYAML(v models.Value) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(c.opts.YAMLIndent)

	if err := enc.Encode(yamlNode(v)); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func yamlNode(v models.Value) *yaml.Node {
	switch v.Kind {
	case models.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: "null"}
	case models.KindBool:
		if v.Bool {
			return &yaml.Node{Kind: yaml.ScalarNode, Value: "true"}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Value: "false"}
	case models.KindNumber:
		n := string(v.Number)
		if n == "" {
			n = "0"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Value: n}
	case models.KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str, Style: yaml.DoubleQuotedStyle}
	case models.KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.Items {
			node.Content = append(node.Content, yamlNode(item))
		}
		return node
	default:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, m := range v.Members {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key}
			node.Content = append(node.Content, key, yamlNode(m.Value))
		}
		return node
	}
}
