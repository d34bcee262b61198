package duckdb

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CanonicalJSON returns deterministic JSON bytes for hashing and storage.
// Raw JSON input is decoded first so that key order never leaks through.
func CanonicalJSON(value any) ([]byte, error) {
	normalized, err := normalizeJSON(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

// FingerprintJSON returns a SHA-256 hex digest of the canonical JSON.
func FingerprintJSON(value any) (string, error) {
	data, err := CanonicalJSON(value)
	if err != nil {
		return "", err
	}
	return fingerprintBytes(data), nil
}

func fingerprintBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// nullableJSON returns the canonical JSON of an optional map, or nil for SQL NULL.
func nullableJSON(value map[string]any) (any, error) {
	if len(value) == 0 {
		return nil, nil
	}
	data, err := CanonicalJSON(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func normalizeJSON(value any) (any, error) {
	switch v := value.(type) {
	case json.RawMessage:
		return decodeNormalized([]byte(v))
	case []byte:
		return decodeNormalized(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, inner := range v {
			norm, err := normalizeJSON(inner)
			if err != nil {
				return nil, err
			}
			out[k] = norm
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i := range v {
			norm, err := normalizeJSON(v[i])
			if err != nil {
				return nil, err
			}
			out[i] = norm
		}
		return out, nil
	default:
		return v, nil
	}
}

func decodeNormalized(data []byte) (any, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("normalize json: %w", err)
	}
	return normalizeJSON(decoded)
}
