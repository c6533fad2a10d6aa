package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file over the defaults. An empty path means
// "defaults only". Malformed YAML or malformed numeric options surface as
// a ValidationError so the caller treats them like any other bad option.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ValidationError{Field: path, Reason: err.Error()}
	}
	return cfg, nil
}
