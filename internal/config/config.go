// Package config loads the application configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "finch.yaml"

// Config is the boot configuration.
type Config struct {
	// SchemaPatterns selects the schema files to load, matched against
	// base file names within SchemaDir.
	SchemaPatterns []string `yaml:"schema_patterns"`

	// SchemaDir is the directory holding entity schema files.
	SchemaDir string `yaml:"schema_dir"`

	// DatabaseURI locates the database, e.g. "sqlite3://finch.db".
	DatabaseURI string `yaml:"database_uri"`

	// EagerCreateTables creates one table per registered entity at boot.
	EagerCreateTables bool `yaml:"eager_create_tables"`

	// PreventDuplicateImports resolves entities registered under more
	// than one module instead of failing.
	PreventDuplicateImports bool `yaml:"prevent_duplicate_imports"`

	// PreferredModulePrefixes ranks modules during duplicate resolution.
	PreferredModulePrefixes []string `yaml:"preferred_module_prefixes"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		SchemaPatterns:          []string{"*.cue"},
		SchemaDir:               "schemas",
		DatabaseURI:             "sqlite3://finch.db",
		EagerCreateTables:       true,
		PreventDuplicateImports: true,
	}
}

// Load reads the configuration at path, filling unset fields with
// defaults. A missing file at the default path is not an error; a
// missing file at an explicit path is.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	if c.DatabaseURI == "" {
		return fmt.Errorf("database_uri must be set")
	}
	if c.SchemaDir == "" {
		return fmt.Errorf("schema_dir must be set")
	}
	if len(c.SchemaPatterns) == 0 {
		return fmt.Errorf("schema_patterns must list at least one pattern")
	}
	return nil
}
