package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/confstore-go/internal/cli/config"
	"github.com/yndnr/confstore-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
			{
				Name:  "init",
				Usage: "Write a config file with the default settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
		},
	}
}

func configFile(c *cli.Context) string {
	if path := c.String("config"); path != "" {
		return path
	}
	return config.DefaultConfigPath()
}

func configShow(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), flagOverrides(c))
	if err != nil {
		return err
	}

	// table output has no nested rendering, show the file form instead
	format, err := output.ParseFormat(cfg.Output)
	if err != nil || format == output.FormatTable {
		format = output.FormatYAML
	}
	return output.NewFormatter(format, false).Format(c.App.Writer, cfg)
}

func configPath(c *cli.Context) error {
	_, err := fmt.Fprintln(c.App.Writer, configFile(c))
	return err
}

func configInit(c *cli.Context) error {
	path := configFile(c)

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	_, err := fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return err
}
