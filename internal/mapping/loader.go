package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"field-assembler/internal/common"
	"field-assembler/internal/log"
)

// LoadFile loads and parses a YAML descriptor file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Debug(log.CatMapping, "descriptor loaded", "path", path,
		"types", len(f.Types), "containers", len(f.Containers))

	return f, nil
}

// LoadFiles loads every path and merges the results into one File.
func LoadFiles(paths ...string) (*File, error) {
	merged := &File{}

	for _, p := range paths {
		f, err := LoadFile(p)
		if err != nil {
			return nil, err
		}

		merged.Merge(f)
	}

	applyDefaults(merged)

	return merged, nil
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse descriptor YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = "1"
	}

	for i := range f.Containers {
		if f.Containers[i].Data == nil {
			f.Containers[i].Data = map[string]any{}
		}
	}
}

// Merge appends the containers and types of other. Duplicates are kept so
// Validate can report them.
func (f *File) Merge(other *File) {
	if other == nil {
		return
	}

	f.Containers = append(f.Containers, other.Containers...)
	f.Types = append(f.Types, other.Types...)
}

// Namespaces lists the namespaces declared or referenced by the file, in
// first-seen order.
func (f *File) Namespaces() []string {
	var out []string

	for _, c := range f.Containers {
		out = append(out, c.Namespace)
	}

	for _, t := range f.Types {
		for _, a := range t.Assemble {
			if a.Container != "" {
				out = append(out, a.Container)
			}
		}
	}

	return common.Distinct(out)
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// WriteFile writes a File to the given path.
func WriteFile(f *File, path string) error {
	data, err := Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal descriptor: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write descriptor file %s: %w", path, err)
	}

	return nil
}
