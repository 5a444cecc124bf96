package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/confstore-go/internal/infra/confloader"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".confstore", "cli.yaml")
}

// Load loads the CLI configuration. Flags in overrides win over CONFSTORE_*
// environment variables, which win over the file, which wins over Default.
//
// An empty path selects DefaultConfigPath. A missing default file is not an
// error; a missing explicit file is.
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		path = ""
	}

	cfg := Default()
	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithDefaults(defaultsMap(cfg)),
	)
	if err := loader.Load(cfg, overrides); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML with 0600 permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func defaultsMap(cfg *CLIConfig) map[string]any {
	return map[string]any{
		"timeout":                 cfg.Timeout.String(),
		"format":                  cfg.Format,
		"output":                  cfg.Output,
		"config_store_url_prefix": cfg.ConfigStoreURLPrefix,
		"ports.lm_cmd_port":       cfg.Ports.LinkMonitorCmd,
	}
}
