package engine

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// Load reads an input document from path and converts it into a
// namespace.Map, the root every [Config] resolves against. The format is
// chosen by extension: ".yaml"/".yml" via gopkg.in/yaml.v3, ".toml" via
// BurntSushi/toml - the same two formats reportengine's own runcards and
// validphys's plotting styles are written in.
func Load(path string) (namespace.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerrors.Wrap(rerrors.ResourceError, err, "reading input document %q", path)
	}

	var raw any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, rerrors.Wrap(rerrors.ConfigError, err, "parsing YAML document %q", path)
		}
	case ".toml":
		var table map[string]any
		if err := toml.Unmarshal(data, &table); err != nil {
			return nil, rerrors.Wrap(rerrors.ConfigError, err, "parsing TOML document %q", path)
		}
		raw = table
	default:
		return nil, rerrors.New(rerrors.ConfigError, "unsupported input document extension %q (want .yaml, .yml, or .toml)", ext)
	}

	root, ok := convert(raw).(namespace.Map)
	if !ok {
		return nil, rerrors.New(rerrors.ConfigError, "input document %q must be a top-level mapping, got %T", path, raw)
	}
	return root, nil
}

// convert normalizes a value decoded by yaml.v3 or BurntSushi/toml into the
// concrete types namespace.Value expects: nested mappings become
// namespace.Map (recursively), and slices become []namespace.Value.
func convert(v any) namespace.Value {
	switch t := v.(type) {
	case map[string]any:
		m := make(namespace.Map, len(t))
		for k, val := range t {
			m[k] = convert(val)
		}
		return m
	case namespace.Map:
		m := make(namespace.Map, len(t))
		for k, val := range t {
			m[k] = convert(val)
		}
		return m
	case []any:
		out := make([]namespace.Value, len(t))
		for i, val := range t {
			out[i] = convert(val)
		}
		return out
	default:
		return v
	}
}
