package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var builtins = []string{"exit", "help", "history", "quit"}

// Executor runs one command line, already split into arguments.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	explain   func(error) string
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		if in != nil {
			r.input = in
		}
		if out != nil {
			r.output = out
		}
	}
}

// WithPrompt sets the prompt.
func WithPrompt(prompt string) Option {
	return func(r *REPL) { r.prompt = prompt }
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// WithErrorFormatter sets how command errors are printed.
func WithErrorFormatter(fn func(error) string) Option {
	return func(r *REPL) { r.explain = fn }
}

// New creates a REPL that runs lines through exec. commands lists the
// top-level command names exec accepts.
func New(exec Executor, commands []string, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    "confstore> ",
		exec:      exec,
		explain:   func(err error) string { return err.Error() },
		completer: NewCompleter(commands),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until exit, EOF or ctx cancellation. Command errors are
// printed and do not stop the loop.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: save history: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil

		if line = strings.TrimSpace(line); line != "" {
			r.history.Add(line)
			if done := r.handle(ctx, line); done {
				return nil
			}
		}

		if eof {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

// handle runs one line and reports whether the loop should stop.
func (r *REPL) handle(ctx context.Context, line string) bool {
	args, err := SplitArgs(line)
	if err != nil {
		fmt.Fprintf(r.output, "error: %v\n", err)
		return false
	}

	switch args[0] {
	case "exit", "quit":
		return true
	case "help":
		fmt.Fprintf(r.output, "commands: %s\n", strings.Join(r.completer.Commands(), ", "))
		return false
	case "history":
		for i := r.history.Len() - 1; i >= 0; i-- {
			fmt.Fprintf(r.output, "%4d  %s\n", r.history.Len()-i, r.history.Get(i))
		}
		return false
	}

	if !strings.HasPrefix(args[0], "-") && !r.completer.Known(args[0]) {
		msg := fmt.Sprintf("unknown command %q", args[0])
		if s := r.completer.Complete(args[0]); len(s) > 0 {
			msg += "; did you mean: " + strings.Join(s, ", ")
		}
		fmt.Fprintf(r.output, "error: %s\n", msg)
		return false
	}

	if err := r.exec(ctx, args); err != nil {
		fmt.Fprintf(r.output, "error: %s\n", r.explain(err))
	}
	return false
}

// SplitArgs splits a line into arguments. Single and double quotes group
// words; a backslash escapes the next character outside single quotes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)

	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case c == '\\' && quote != '\'':
			escaped, inArg = true, true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote, inArg = c, true
		case c == ' ' || c == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(c)
			inArg = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inArg {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	return args, nil
}
