package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tetrad-labs/metasnap/internal/engine"
)

// OverrideEntry is one configured contract override: the named column of
// the named result set may be NULL without failing the run.
type OverrideEntry struct {
	ResultSet string `yaml:"resultSet"`
	Column    string `yaml:"column"`
}

// Config is the metasnap configuration file. Every field is optional; the
// zero config runs strict extraction against the default sqlite driver.
type Config struct {
	// Driver and DSN select the live connection. The driver must be
	// registered in the binary (sqlite3 by default).
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`

	// ScriptPath overrides the embedded extraction script.
	ScriptPath string `yaml:"scriptPath"`

	// FixtureManifest locates the replay manifest for the replay command.
	FixtureManifest string `yaml:"fixtureManifest"`

	// DiagnosticsPath, when set, receives the success/failure diagnostics
	// document of every run.
	DiagnosticsPath string `yaml:"diagnosticsPath"`

	// Overrides lists the configured contract exemptions. Empty means
	// strict.
	Overrides []OverrideEntry `yaml:"overrides"`
}

// LoadConfig reads a YAML config file. An empty path yields the zero
// (strict, sqlite) config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Driver: "sqlite3"}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Driver == "" {
		cfg.Driver = "sqlite3"
	}
	return cfg, nil
}

// BuildOverrides converts the configured entries into the engine registry.
func (c *Config) BuildOverrides() engine.Overrides {
	ov := engine.NewOverrides()
	for _, e := range c.Overrides {
		ov = ov.WithOptional(e.ResultSet, e.Column)
	}
	return ov
}

// Script loads the configured script override, or returns "" to select the
// embedded default.
func (c *Config) Script() (string, error) {
	if c.ScriptPath == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.ScriptPath)
	if err != nil {
		return "", fmt.Errorf("reading script: %w", err)
	}
	return string(data), nil
}
