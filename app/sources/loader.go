package sources

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nharvey/govpulse/app/cfg"
)

type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// LoadAll reads every *.yml file in the sources directory, sorted by name
// so harvest order is stable. A missing or unset directory yields no
// sources; callers fall back to the configured feed URL.
func (l *Loader) LoadAll() ([]*Source, error) {
	if l.dir == "" {
		return nil, nil
	}

	if _, err := os.Stat(l.dir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	sort.Strings(files)

	loaded := make([]*Source, 0, len(files))
	for _, file := range files {
		fileName := filepath.Base(file)
		name := fileName[:len(fileName)-len(".yml")]

		source, err := l.loadSource(file, name)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded",
			"source", name,
			"enabled", source.Settings.Enabled,
			"extract_pages", source.Settings.ExtractPages)

		loaded = append(loaded, source)
	}

	return loaded, nil
}

// Default builds the single source described by the top-level configuration,
// used when no sources directory is configured.
func Default() *Source {
	c := cfg.Get()

	return &Source{
		Name: "default",
		URL:  c.FeedURL,
		Settings: Settings{
			Enabled:      true,
			ExtractPages: c.ExtractPages,
			MaxEntries:   c.MaxEntries,
			Timeout:      c.Timeout,
		},
	}
}

func (l *Loader) loadSource(file, name string) (*Source, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var source Source
	if err := yaml.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	source.Name = name

	if source.Settings.Timeout == 0 {
		source.Settings.Timeout = 30
	}

	if err := l.validate(&source); err != nil {
		return nil, err
	}

	return &source, nil
}

func (l *Loader) validate(source *Source) error {
	if source.URL == "" {
		return fmt.Errorf("source URL is required")
	}

	nonNegativeFields := map[string]int{
		"max entries": source.Settings.MaxEntries,
		"timeout":     source.Settings.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	return nil
}
