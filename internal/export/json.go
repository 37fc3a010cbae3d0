package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// JSONWriter writes the whole report as one JSON document.
type JSONWriter struct {
	Indent string
}

func (JSONWriter) Format() string { return "json" }

func (w JSONWriter) Write(r *Report, dir string) ([]string, error) {
	return writeFile(dir, "bibnet.json", func(f *os.File) error {
		enc := json.NewEncoder(f)
		if w.Indent != "" {
			enc.SetIndent("", w.Indent)
		}
		return enc.Encode(r)
	})
}

// YAMLWriter writes the whole report as one YAML document.
type YAMLWriter struct{}

func (YAMLWriter) Format() string { return "yaml" }

func (YAMLWriter) Write(r *Report, dir string) ([]string, error) {
	return writeFile(dir, "bibnet.yaml", func(f *os.File) error {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	})
}

func writeFile(dir, name string, encode func(*os.File) error) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := encode(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return []string{path}, nil
}
