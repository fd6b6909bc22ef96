// Package sources loads the curated discovery sources and suggestion seeds.
// Files are YAML; JSON is accepted as a YAML subset.
package sources

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader reads a list file from disk.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Sources reads and validates the discovery sources file.
func (l *Loader) Sources() ([]Source, error) {
	var list []Source
	if err := l.load(&list); err != nil {
		return nil, err
	}

	out := make([]Source, 0, len(list))
	for i, s := range list {
		s.Name = strings.TrimSpace(s.Name)
		s.URL = strings.TrimSpace(s.URL)
		if s.URL == "" {
			return nil, fmt.Errorf("source #%d (%s): url is required", i+1, s.Name)
		}
		if s.Name == "" {
			s.Name = s.URL
		}
		switch Kind(strings.ToLower(string(s.Kind))) {
		case KindRSS, "atom", "feed":
			s.Kind = KindRSS
		case KindHTML, "":
			s.Kind = KindHTML
		default:
			return nil, fmt.Errorf("source %s: unknown kind %q", s.Name, s.Kind)
		}
		out = append(out, s)
	}
	return out, nil
}

// Seeds reads the suggestion seeds file.
func (l *Loader) Seeds() ([]Seed, error) {
	var list []Seed
	if err := l.load(&list); err != nil {
		return nil, err
	}
	return list, nil
}

func (l *Loader) load(v any) error {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", l.filePath, err)
	}

	// ${VAR} references are filled from the environment
	data = []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s (expected a list): %w", l.filePath, err)
	}
	return nil
}
