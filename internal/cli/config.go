package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration file. Flags override it.
type Config struct {
	// Paradigm is the default storage paradigm: "normalized" or "document".
	Paradigm string `yaml:"paradigm"`
	// DesignLevel enables the completeness rules during validation.
	DesignLevel bool `yaml:"design_level"`
	// OneNF enables the first-normal-form rules during validation.
	OneNF bool `yaml:"one_nf"`
	// SnapshotDB is the default snapshot database path.
	SnapshotDB string `yaml:"snapshot_db"`
	// MaxAlternatives caps the planner's combination enumeration.
	MaxAlternatives int `yaml:"max_alternatives"`
}

// LoadConfig reads a YAML config file. A missing path yields the zero
// config; a present but unreadable or malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
