package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by the loader.
const EnvPrefix = "CONFSTORE_"

// levelSeparator separates nesting levels in environment variable names.
const levelSeparator = "__"

// Loader merges defaults, a YAML file, the environment and overrides into
// one configuration struct.
type Loader struct {
	k        *koanf.Koanf
	filePath string
	defaults map[string]any
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithDefaults sets the lowest-priority values, keyed by dotted path.
func WithDefaults(defaults map[string]any) Option {
	return func(l *Loader) {
		l.defaults = defaults
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{k: koanf.New(".")}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads defaults, the file, the environment and then overrides, and
// unmarshals the result into target using koanf tags. Later sources win.
func (l *Loader) Load(target any, overrides map[string]any) error {
	if len(l.defaults) > 0 {
		if err := l.loadMap(l.defaults); err != nil {
			return fmt.Errorf("load defaults: %w", err)
		}
	}

	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
	}

	if err := l.loadEnv(); err != nil {
		return err
	}

	if len(overrides) > 0 {
		if err := l.loadMap(overrides); err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
	}

	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// loadEnv maps CONFSTORE_PORTS__LM_CMD_PORT to ports.lm_cmd_port.
func (l *Loader) loadEnv() error {
	transform := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, levelSeparator, ".")
	}

	if err := l.k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

func (l *Loader) loadMap(data map[string]any) error {
	return l.k.Load(mapProvider(data), nil)
}
