// Package config loads confgen settings from TOML.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Generator contains the settings of the conformer generation pipeline.
type Generator struct {
	MinMacroRingSize int     `toml:"min_macro_ring_size"`
	TopN             int     `toml:"top_n"`
	EnergyWindow     float64 `toml:"energy_window"`
	RMSDThreshold    float64 `toml:"rmsd_threshold"`
}

// Crest contains the settings of the CREST conformational search.
type Crest struct {
	Command       string  `toml:"command"`
	Method        string  `toml:"method"`
	EnergyWindow  float64 `toml:"energy_window"`
	RMSDThreshold float64 `toml:"rmsd_threshold"`
	Temperature   float64 `toml:"temperature"`
	CPUs          int     `toml:"cpus"`
	WorkDir       string  `toml:"work_dir"`
	KeepWorkDir   bool    `toml:"keep_workdir"`
}

// OpenBabel contains the settings of the obabel driver.
type OpenBabel struct {
	Command string `toml:"command"`
	Gen3D   string `toml:"gen3d"`
}

// Output contains optional outputs.
type Output struct {
	Database string `toml:"database"`
	Plot     bool   `toml:"plot"`
}

// Logging contains structured log settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the complete confgen configuration.
type Config struct {
	Generator Generator `toml:"generator"`
	Crest     Crest     `toml:"crest"`
	OpenBabel OpenBabel `toml:"openbabel"`
	Output    Output    `toml:"output"`
	Logging   Logging   `toml:"logging"`
}

// Load parses, normalizes and validates a configuration file. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Sample returns a commented configuration file holding the defaults.
func Sample() string {
	return sampleConfig
}

// Encode renders cfg as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}
