package store

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DashboardYAML renders a dashboard config as block-style YAML. Key order
// follows the JSON document.
func DashboardYAML(config json.RawMessage) ([]byte, error) {
	if !json.Valid(config) {
		return nil, fmt.Errorf("dashboard config is not valid JSON")
	}

	// JSON is a subset of YAML, so the node tree keeps key order.
	var doc yaml.Node
	if err := yaml.Unmarshal(config, &doc); err != nil {
		return nil, fmt.Errorf("parse dashboard config: %w", err)
	}
	blockStyle(&doc)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("encode dashboard yaml: %w", err)
	}
	return out, nil
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	for _, c := range n.Content {
		blockStyle(c)
	}
}
