package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceType identifies where a configuration tier came from.
type SourceType string

const (
	SourceDefault SourceType = "default"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
)

// Source provides one tier of registry configuration data.
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
}

// yamlProvider implements Source for the installation settings file.
type yamlProvider struct {
	path string
}

// NewYAMLProvider creates a configuration source backed by a YAML settings
// file. A missing file yields no data rather than an error, so installations
// without a settings file fall back to defaults and environment variables.
func NewYAMLProvider(path string) Source {
	return &yamlProvider{path: path}
}

// Load reads configuration from the YAML settings file.
func (y *yamlProvider) Load() (map[string]any, error) {
	data, err := os.ReadFile(y.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", y.path, err)
	}
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", y.path, err)
	}
	return filterNilValues(config), nil
}

// Type returns the source type identifier.
func (y *yamlProvider) Type() SourceType {
	return SourceYAML
}

// filterNilValues recursively removes nil values from a map. This prevents
// koanf from overriding existing values with nil.
func filterNilValues(m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		if v == nil {
			continue
		}
		if nestedMap, ok := v.(map[string]any); ok {
			filtered := filterNilValues(nestedMap)
			if len(filtered) > 0 {
				result[k] = filtered
			}
		} else {
			result[k] = v
		}
	}
	return result
}

// mapProvider implements Source for fabricated registry data, used by tests
// and programmatic callers.
type mapProvider struct {
	data map[string]any
	typ  SourceType
}

// NewMapProvider creates a configuration source from an in-memory map keyed
// by dot-notation configuration paths.
func NewMapProvider(data map[string]any, typ SourceType) Source {
	return &mapProvider{data: data, typ: typ}
}

// Load returns the in-memory configuration data.
func (m *mapProvider) Load() (map[string]any, error) {
	if m.data == nil {
		return make(map[string]any), nil
	}
	return m.data, nil
}

// Type returns the source type identifier.
func (m *mapProvider) Type() SourceType {
	return m.typ
}
