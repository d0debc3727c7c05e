package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfigPath is the config file inside ConfigDir.
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Save writes the config to UserConfigPath.
func (c *Config) Save() error {
	return c.SaveTo(UserConfigPath())
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	// Create parent directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
