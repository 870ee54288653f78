package jsonschema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a schema written in YAML. Only the first document of a
// multi-document stream is read.
func ParseYAML(data []byte) (*Schema, error) {
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("jsonschema: invalid YAML: %w", err)
	}
	m := stringKeyed(node)
	if m == nil {
		return nil, ErrNotObject
	}
	return FromMap(m)
}

// stringKeyed returns a YAML mapping as the map[string]any a JSON schema
// decoder would produce, converting nested mappings and sequences as well.
// Scalar keys that are not strings (`1: x`, `true: y`) are printed.
// It returns nil when v is not a mapping.
func stringKeyed(v any) map[string]any {
	var out map[string]any
	switch m := v.(type) {
	case map[string]any:
		out = make(map[string]any, len(m))
		for k, child := range m {
			out[k] = jsonLike(child)
		}
	case map[any]any:
		out = make(map[string]any, len(m))
		for k, child := range m {
			key, ok := k.(string)
			if !ok {
				key = fmt.Sprint(k)
			}
			out[key] = jsonLike(child)
		}
	}
	return out
}

func jsonLike(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return stringKeyed(t)
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = jsonLike(child)
		}
		return out
	}
	return v
}
