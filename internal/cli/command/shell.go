package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/confstore-go/internal/cli/repl"
	"github.com/yndnr/confstore-go/internal/core/domain"
)

const shellCommandName = "shell"

// ShellCommand runs commands interactively. Global flags given before
// "shell" apply to every line.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  shellCommandName,
		Usage: "Run commands interactively",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not read or write the history file",
			},
		},
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	globals := globalArgs(c)

	history := repl.NewHistory(repl.DefaultHistoryFile())
	if c.Bool("no-history") {
		history = repl.NewHistory("")
	}

	exec := func(ctx context.Context, args []string) error {
		if len(args) > 0 && args[0] == shellCommandName {
			return domain.ErrInvalidArgument.WithDetails("already in shell")
		}

		app := App()
		app.Writer = c.App.Writer
		app.ErrWriter = c.App.ErrWriter
		app.Reader = c.App.Reader
		app.ExitErrHandler = func(*cli.Context, error) {}

		argv := append([]string{c.App.Name}, globals...)
		return app.RunContext(ctx, append(argv, args...))
	}

	r := repl.New(exec, commandNames(c.App),
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistory(history),
		repl.WithErrorFormatter(Explain),
	)
	return r.Run(commandContext(c))
}

// globalArgs re-renders the explicitly set global flags as arguments.
func globalArgs(c *cli.Context) []string {
	var args []string
	for _, f := range globalFlags() {
		name := f.Names()[0]
		if !c.IsSet(name) {
			continue
		}
		args = append(args, fmt.Sprintf("--%s=%v", name, c.Value(name)))
	}
	return args
}

func commandNames(app *cli.App) []string {
	var names []string
	for _, cmd := range app.Commands {
		if cmd.Name == "help" || cmd.Hidden {
			continue
		}
		names = append(names, cmd.Name)
	}
	return names
}
