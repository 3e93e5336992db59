package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// loadData reads a render context from a JSON or YAML file, chosen by
// extension (falling back to JSON), alongside the engine's own JSON
// convenience (JSONTemplate/toJSONString).
func loadData(path string) (interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}

	var data interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parsing YAML data file: %w", err)
		}
		data = normalizeYAML(data)
	default:
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parsing JSON data file: %w", err)
		}
	}
	return data, nil
}

// normalizeYAML recursively converts the map[interface{}]interface{}
// shape yaml.v2 decodes into to map[string]interface{}, which is what
// the engine's reflection adapter (context.go) expects of a map-valued
// context (its Field lookup uses a string key).
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}
