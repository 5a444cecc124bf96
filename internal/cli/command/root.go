package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/confstore-go/internal/core/domain"
	"github.com/yndnr/confstore-go/internal/infra/buildinfo"
	"github.com/yndnr/confstore-go/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "confstore-cli",
		Usage:   "Inspect and modify the Config Store of a node",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PrefixAllocatorCommand(),
			LinkMonitorCommand(),
			PrefixManagerCommand(),
			EraseCommand(),
			StoreCommand(),
			ConfigCommand(),
			ShellCommand(),
		},
		Before: setupLogger,
	}
}

// globalFlags returns the global CLI flags. Flags without a value fall back
// to CONFSTORE_* environment variables, then the config file.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file (default ~/.confstore/cli.yaml)",
			EnvVars: []string{"CONFSTORE_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "config-store-url",
			Usage: "Config Store endpoint; skips node name lookup",
		},
		&cli.StringFlag{
			Name:    "host",
			Aliases: []string{"H"},
			Usage:   "Host to query for its node name (default localhost)",
		},
		&cli.StringFlag{
			Name:  "node",
			Usage: "Node name; skips the link monitor lookup",
		},
		&cli.IntFlag{
			Name:  "lm-cmd-port",
			Usage: "Link monitor command port (default 60006)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Wire format: compact, json",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Shorthand for --format json",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Request timeout (default 5s)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "Write the dump blob to stdout unmodified",
		},
		&cli.StringFlag{
			Name:  "metrics-textfile",
			Usage: "Write request metrics to this file after the command",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level on stderr: debug, info, warn, error",
			EnvVars: []string{"CONFSTORE_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format on stderr: text, json",
			EnvVars: []string{"CONFSTORE_LOG_FORMAT"},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging and show request details",
		},
	}
}

// setupLogger installs the process logger on stderr. --verbose wins over
// --log-level.
func setupLogger(c *cli.Context) error {
	cfg := logger.DefaultConfig()
	if c.IsSet("log-level") {
		cfg.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Format = c.String("log-format")
	}
	if c.Bool("verbose") {
		cfg.Level = "debug"
	}
	if c.App.ErrWriter != nil {
		cfg.Output = c.App.ErrWriter
	}

	l, err := logger.New(cfg)
	if err != nil {
		return domain.ErrInvalidArgument.WithDetails(err.Error())
	}
	logger.SetDefault(l)
	if c.Context != nil {
		c.Context = logger.WithLogger(c.Context, l)
	}
	return nil
}

// flagOverrides collects explicitly set flags as config keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)

	for flag, key := range map[string]string{
		"config-store-url": "config_store_url",
		"host":             "host",
		"node":             "node",
		"format":           "format",
		"output":           "output",
		"metrics-textfile": "metrics_textfile",
	} {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}

	if c.Bool("json") {
		overrides["format"] = "json"
	}
	if c.IsSet("timeout") {
		overrides["timeout"] = c.Duration("timeout").String()
	}
	if c.IsSet("lm-cmd-port") {
		overrides["ports.lm_cmd_port"] = c.Int("lm-cmd-port")
	}
	if c.Bool("verbose") {
		overrides["verbose"] = true
	}

	return overrides
}
