package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/yndnr/confstore-go/internal/core/domain"
)

// CLIConfig is the configuration for confstore-cli.
type CLIConfig struct {
	// Host whose node name is looked up when no URL is given. Empty means
	// localhost.
	Host string `koanf:"host" yaml:"host,omitempty"`

	// Node skips the link monitor lookup and uses this node name.
	Node string `koanf:"node" yaml:"node,omitempty"`

	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
	Format  string        `koanf:"format" yaml:"format"` // compact, json
	Output  string        `koanf:"output" yaml:"output"` // table, json, yaml

	// ConfigStoreURL, when set, is used verbatim as the endpoint.
	ConfigStoreURL string `koanf:"config_store_url" yaml:"config_store_url,omitempty"`

	// ConfigStoreURLPrefix is joined with the node name to build the endpoint.
	ConfigStoreURLPrefix string `koanf:"config_store_url_prefix" yaml:"config_store_url_prefix"`

	Ports PortsConfig `koanf:"ports" yaml:"ports"`

	// MetricsTextfile, when set, receives request metrics after each command.
	MetricsTextfile string `koanf:"metrics_textfile" yaml:"metrics_textfile,omitempty"`

	Verbose bool `koanf:"verbose" yaml:"-"`
}

// PortsConfig holds well-known ports of the node.
type PortsConfig struct {
	LinkMonitorCmd int `koanf:"lm_cmd_port" yaml:"lm_cmd_port"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Timeout:              domain.DefaultTimeout,
		Format:               domain.FormatCompact.String(),
		Output:               "table",
		ConfigStoreURLPrefix: DefaultURLPrefix,
		Ports: PortsConfig{
			LinkMonitorCmd: DefaultLinkMonitorCmdPort,
		},
	}
}

// Default endpoint settings. They match the service package defaults and
// are repeated here so the config package has no service dependency.
const (
	DefaultURLPrefix          = "ipc:///tmp/config_store_cmd"
	DefaultLinkMonitorCmdPort = 60006
)

// WireFormat parses the configured wire format.
func (c *CLIConfig) WireFormat() (domain.Format, error) {
	return domain.ParseFormat(c.Format)
}

// Validate checks value ranges and enumerations.
func (c *CLIConfig) Validate() error {
	if c.Timeout <= 0 {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("timeout must be positive, got %s", c.Timeout))
	}
	if _, err := c.WireFormat(); err != nil {
		return err
	}
	switch strings.ToLower(c.Output) {
	case "table", "json", "yaml":
	default:
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown output format %q", c.Output))
	}
	if p := c.Ports.LinkMonitorCmd; p < 0 || p > 65535 {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("lm_cmd_port %d out of range", p))
	}
	return nil
}
