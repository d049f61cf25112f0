package archive

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Field is one key/value line of a data file.
type Field struct {
	Key   string
	Value any
}

// Fields is an ordered mapping. It encodes as a YAML mapping that keeps the
// order the fields were added in.
type Fields []Field

// MarshalYAML implements yaml.Marshaler.
func (f Fields) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, field := range f {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: field.Key}
		value := &yaml.Node{}
		if err := value.Encode(field.Value); err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Key, err)
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}
