package datamodel

import (
	"maps"
	"slices"
)

// DataSourceType says where a piece of data came from.
type DataSourceType string

const (
	DataSourceHuman     DataSourceType = "human"
	DataSourceSynthetic DataSourceType = "synthetic"
)

// Valid reports whether t is a known data source type.
func (t DataSourceType) Valid() bool {
	return t == DataSourceHuman || t == DataSourceSynthetic
}

// DataSource references the producer of data, such as a model.
type DataSource struct {
	Type       DataSourceType `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

func (s DataSource) clone() DataSource {
	return DataSource{Type: s.Type, Properties: cloneProperties(s.Properties)}
}

// Prompt is the judge prompt of an eval config.
type Prompt struct {
	Name                       string `json:"name"`
	Prompt                     string `json:"prompt"`
	ChainOfThoughtInstructions string `json:"chain_of_thought_instructions,omitempty"`
}

func (p *Prompt) clone() *Prompt {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

func cloneProperties(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneProperties(v)
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = cloneValue(v[i])
		}
		return out
	case []string:
		return slices.Clone(v)
	case map[string]string:
		return maps.Clone(v)
	default:
		return v
	}
}
