package kv

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLNode renders n as a single-key mapping. Arrays become sequences of
// single-key mappings so sibling order and repeated keys are preserved.
func (n Node) YAMLNode() *yaml.Node {
	key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.Key}

	var val *yaml.Node
	if n.kind == KindArray {
		val = ListYAMLNode(n.children)
	} else {
		val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.str}
	}

	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Tag:     "!!map",
		Content: []*yaml.Node{key, val},
	}
}

// ListYAMLNode renders a list of nodes as a YAML sequence.
func ListYAMLNode(nodes []Node) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, c := range nodes {
		seq.Content = append(seq.Content, c.YAMLNode())
	}
	return seq
}

// MarshalYAML implements yaml.Marshaler.
func (n Node) MarshalYAML() (interface{}, error) {
	return n.YAMLNode(), nil
}

// EncodeYAML renders a list of nodes as a YAML document.
func EncodeYAML(nodes []Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ListYAMLNode(nodes)); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}
