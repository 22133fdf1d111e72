// SPDX-License-Identifier: MPL-2.0

package topology

import (
	"fmt"

	"github.com/pyleus/pyleus-launch/internal/compose"

	"gopkg.in/yaml.v3"
)

// optionsFromNode converts an options mapping node. An absent or null node
// means no options at all, which is different from an empty mapping.
func optionsFromNode(n *yaml.Node) (*compose.Options, error) {
	if n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null") {
		return nil, nil
	}
	if n.Kind == yaml.AliasNode {
		return optionsFromNode(n.Alias)
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	return mappingFromNode(n)
}

func mappingFromNode(n *yaml.Node) (*compose.Options, error) {
	o := compose.NewOptions()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: option keys must be scalars", key.Line)
		}
		v, err := valueFromNode(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key.Value, err)
		}
		o.Set(key.Value, v)
	}
	return o, nil
}

func valueFromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		return mappingFromNode(n)
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := valueFromNode(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.AliasNode:
		return valueFromNode(n.Alias)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}
