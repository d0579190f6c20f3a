package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a descriptor file.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
)

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".jsonc":
		return FormatJSONC, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// LoadFile reads a descriptor file, decodes it by extension and validates it.
func LoadFile(path string) (*Descriptor, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return nil, fmt.Errorf("unsupported descriptor file extension: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file: %w", err)
	}
	return ParseFormat(data, format)
}

// Parse decodes a JSON descriptor and validates it.
func Parse(data []byte) (*Descriptor, error) {
	return ParseFormat(data, FormatJSON)
}

// ParseFormat decodes a descriptor in the given format and validates it.
func ParseFormat(data []byte, format Format) (*Descriptor, error) {
	var err error
	switch format {
	case FormatJSON:
	case FormatJSONC:
		data = jsonc.ToJSON(data)
	case FormatYAML:
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported descriptor format %q", format)
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor JSON: %w", err)
	}
	if errs := d.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("descriptor validation failed: %w", errors.Join(errs...))
	}
	return &d, nil
}

// yamlToJSON converts a YAML document to JSON keeping mapping key order,
// which a plain decode into map[string]any would lose.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty YAML document")
	}
	v, err := valueFromYAML(doc.Content[0])
	if err != nil {
		return nil, err
	}
	return v.MarshalJSON()
}

func valueFromYAML(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return valueFromYAML(n.Alias)
	case yaml.MappingNode:
		fields := make([]Field, 0, len(n.Content)/2)
		seen := make(map[string]bool, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if seen[key.Value] {
				return Value{}, fmt.Errorf("line %d: duplicate key %q", key.Line, key.Value)
			}
			seen[key.Value] = true
			v, err := valueFromYAML(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, F(key.Value, v))
		}
		return ObjectOf(fields...), nil
	case yaml.SequenceNode:
		items := make([]Value, len(n.Content))
		for i, c := range n.Content {
			v, err := valueFromYAML(c)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return List(items...), nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return Null(), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return Bool(b), nil
		case "!!int", "!!float":
			var f float64
			if err := n.Decode(&f); err != nil {
				return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return Number(f), nil
		default:
			return String(n.Value), nil
		}
	}
	return Value{}, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}
