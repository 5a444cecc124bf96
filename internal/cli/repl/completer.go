package repl

import (
	"sort"
	"strings"
)

// Completer suggests command names.
type Completer struct {
	commands []string
}

// NewCompleter creates a completer for the given command names plus the
// REPL's own builtins.
func NewCompleter(commands []string) *Completer {
	all := append(append([]string(nil), commands...), builtins...)
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns the commands starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Known reports whether name is an exact command.
func (c *Completer) Known(name string) bool {
	i := sort.SearchStrings(c.commands, name)
	return i < len(c.commands) && c.commands[i] == name
}

// Commands returns all command names in sorted order.
func (c *Completer) Commands() []string {
	return append([]string(nil), c.commands...)
}
