package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk catalog layout, shared by the JSON and
// YAML forms.
type catalogFile struct {
	Structures []Definition `json:"structures" yaml:"structures"`
	Measures   []string     `json:"measures,omitempty" yaml:"measures,omitempty"`
}

// ReadDefinitions parses a catalog file and returns its structure
// definitions and optional report measure order. The format is chosen
// by extension: .json, or .yaml/.yml.
func ReadDefinitions(path string) ([]Definition, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog: %w", err)
	}
	return parseDefinitions(data, filepath.Ext(path), path)
}

func parseDefinitions(data []byte, ext, name string) ([]Definition, []string, error) {
	var file catalogFile
	switch ext = strings.ToLower(ext); ext {
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, nil, fmt.Errorf("parse catalog %s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, nil, fmt.Errorf("parse catalog %s: %w", name, err)
		}
	default:
		return nil, nil, fmt.Errorf("catalog %s: unsupported extension %q (want .json, .yaml, or .yml)", name, ext)
	}

	if len(file.Structures) == 0 {
		return nil, nil, fmt.Errorf("catalog %s: no structures defined", name)
	}
	return file.Structures, file.Measures, nil
}

func loadParsed(defs []Definition, measures []string, opts []Option) (*Catalog, error) {
	if len(measures) > 0 {
		opts = append([]Option{WithMeasures(measures)}, opts...)
	}
	return Load(defs, opts...)
}

// LoadFile reads and compiles a catalog file.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	defs, measures, err := ReadDefinitions(path)
	if err != nil {
		return nil, err
	}
	return loadParsed(defs, measures, opts)
}

// LoadBytes compiles an in-memory catalog. The format is chosen by the
// extension of name, as with LoadFile.
func LoadBytes(data []byte, name string, opts ...Option) (*Catalog, error) {
	defs, measures, err := parseDefinitions(data, filepath.Ext(name), name)
	if err != nil {
		return nil, err
	}
	return loadParsed(defs, measures, opts)
}
