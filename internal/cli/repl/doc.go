// Package repl provides the interactive mode of confstore-cli.
//
//   - repl.go: read-eval-print loop and line splitting
//   - completer.go: command name suggestions for unknown or partial input
//   - history.go: command history persisted under ~/.confstore
//
// Each line runs as an independent command; nothing is carried between
// lines except the history.
package repl
