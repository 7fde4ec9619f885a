package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "go.yaml.in/yaml/v3"
)

// decoders maps file extensions to the formats converted to JSON before
// strict decoding. Anything else is read as JSON.
var decoders = map[string]struct {
	format    string
	unmarshal func([]byte, any) error
}{
	".yaml": {"yaml", yaml.Unmarshal},
	".yml":  {"yaml", yaml.Unmarshal},
	".toml": {"toml", toml.Unmarshal},
}

// coerceToJSONBytes returns data as JSON together with the detected format
// ("json", "yaml" or "toml"), so one strict decoder serves every format.
func coerceToJSONBytes(path string, data []byte) ([]byte, string, error) {
	d, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return data, "json", nil
	}
	var v any
	if err := d.unmarshal(data, &v); err != nil {
		return nil, d.format, fmt.Errorf("%s config: %w", d.format, err)
	}
	j, err := json.Marshal(stringKeys(v))
	if err != nil {
		return nil, d.format, fmt.Errorf("%s config: %w", d.format, err)
	}
	return j, d.format, nil
}

// stringKeys rewrites nested maps with non-string keys (YAML allows them)
// into map[string]any so they can be marshaled as JSON.
func stringKeys(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = stringKeys(v)
		}
		return m
	case map[string]any:
		for k, v := range x {
			x[k] = stringKeys(v)
		}
		return x
	case []any:
		for i := range x {
			x[i] = stringKeys(x[i])
		}
		return x
	default:
		return in
	}
}
