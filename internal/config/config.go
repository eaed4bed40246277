// Package config persists user preferences between sessions: the run option
// toggles, the default backend, and extra exclude globs for the scanner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML file under the user config directory.
type Config struct {
	Compress       bool     `yaml:"compress"`
	StripComments  bool     `yaml:"strip_comments"`
	IncludeTree    bool     `yaml:"include_tree"`
	Format         string   `yaml:"format"`
	DefaultBackend string   `yaml:"default_backend"`
	Exclude        []string `yaml:"exclude,omitempty"`
}

// Default returns first-run settings: XML output through repomix with every
// toggle off.
func Default() Config {
	return Config{
		Format:         "xml",
		DefaultBackend: "repomix",
	}
}

// Path is the config file location under the user config directory.
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	return filepath.Join(configDir, "repopick", "config.yaml"), nil
}

// Load reads the config file, creating it with defaults when missing. A
// corrupt file is an error rather than silently replaced.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if err := SaveTo(path, cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save rewrites the config file; called whenever the user flips an option.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, out, perm); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
