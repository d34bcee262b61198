package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads, parses and validates a definition file. Files ending in
// .json are parsed as JSON, everything else as YAML.
func Load(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read definition: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseYAML parses and validates a YAML definition.
func ParseYAML(data []byte) (Definition, error) {
	var def Definition
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("parse definition: %w", err)
	}
	var extra yaml.Node
	if err := decoder.Decode(&extra); err != io.EOF {
		if err == nil {
			return Definition{}, fmt.Errorf("parse definition: multiple YAML documents are not supported")
		}
		return Definition{}, fmt.Errorf("parse definition: %w", err)
	}
	normalizeYAML(&def)
	if err := Validate(def); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// ParseJSON parses and validates a JSON definition.
func ParseJSON(data []byte) (Definition, error) {
	var def Definition
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("parse definition: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Definition{}, fmt.Errorf("parse definition: multiple documents are not supported")
		}
		return Definition{}, fmt.Errorf("parse definition: %w", err)
	}
	if err := Validate(def); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// normalizeYAML converts map[any]any values left by nested YAML mappings
// with non-string keys into JSON-compatible maps.
func normalizeYAML(def *Definition) {
	if def.EvalConfig == nil {
		return
	}
	def.EvalConfig.Properties = normalizeMap(def.EvalConfig.Properties)
	def.EvalConfig.Model.Properties = normalizeMap(def.EvalConfig.Model.Properties)
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalizeMap(v)
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[fmt.Sprint(key)] = normalizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = normalizeValue(v[i])
		}
		return out
	default:
		return v
	}
}
