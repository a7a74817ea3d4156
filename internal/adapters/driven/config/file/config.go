package file

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/openhgis/arealink/internal/core/domain"
)

// Config is the full run configuration.
type Config struct {
	// Snapshots is the input series. Entries may appear in any order in
	// the file; Refs returns them sorted by year.
	Snapshots []SnapshotEntry `toml:"snapshots"`

	Input  InputConfig  `toml:"input"`
	Output OutputConfig `toml:"output"`
	Run    RunConfig    `toml:"run"`

	Thresholds domain.Thresholds `toml:"thresholds"`
}

// SnapshotEntry names one snapshot input file.
type SnapshotEntry struct {
	Year int    `toml:"year"`
	Path string `toml:"path"`
}

// InputConfig controls how snapshot layers are read.
type InputConfig struct {
	// SourceCRS and TargetCRS name the input and working coordinate
	// reference systems.
	SourceCRS string `toml:"source_crs"`
	TargetCRS string `toml:"target_crs"`

	// IDProperty, NameProperty and ParentProperty map feature properties
	// to the unit fields.
	IDProperty     string `toml:"id_property"`
	NameProperty   string `toml:"name_property"`
	ParentProperty string `toml:"parent_property"`
}

// OutputConfig names the output locations.
type OutputConfig struct {
	// Dir receives the CSV and summary files.
	Dir string `toml:"dir"`

	// CatalogPath is the SQLite link-catalog file.
	CatalogPath string `toml:"catalog_path"`
}

// RunConfig controls execution.
type RunConfig struct {
	// Parallel bounds concurrently running snapshot pairs; zero means one
	// worker per CPU.
	Parallel int `toml:"parallel"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Input: InputConfig{
			SourceCRS:      "EPSG:4326",
			TargetCRS:      "EPSG:3347",
			IDProperty:     "id",
			NameProperty:   "name",
			ParentProperty: "parent",
		},
		Output: OutputConfig{
			Dir:         "out",
			CatalogPath: "out/links.db",
		},
		Thresholds: domain.DefaultThresholds(),
	}
}

// Load reads a TOML config file over the defaults. Unknown keys are
// rejected so a typo never silently falls back to a default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	years := make(map[int]bool)
	for _, s := range c.Snapshots {
		if s.Year == 0 {
			return fmt.Errorf("%w: snapshot entry without a year", domain.ErrInvalidInput)
		}
		if s.Path == "" {
			return fmt.Errorf("%w: snapshot %d without a path", domain.ErrInvalidInput, s.Year)
		}
		if years[s.Year] {
			return fmt.Errorf("%w: duplicate snapshot year %d", domain.ErrInvalidInput, s.Year)
		}
		years[s.Year] = true
	}
	if c.Run.Parallel < 0 {
		return fmt.Errorf("%w: run.parallel must not be negative", domain.ErrInvalidInput)
	}
	return c.Thresholds.Validate()
}

// Refs returns the snapshot series sorted by year.
func (c Config) Refs() []domain.SnapshotRef {
	refs := make([]domain.SnapshotRef, len(c.Snapshots))
	for i, s := range c.Snapshots {
		refs[i] = domain.SnapshotRef{Year: s.Year, Path: s.Path}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Year < refs[j].Year })
	return refs
}
