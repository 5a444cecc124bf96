// Package command provides the confstore-cli commands.
//
//   - root.go: App, global flags, logger setup
//   - invocation.go: config loading, endpoint resolution, dispatcher wiring
//   - dump.go: prefix-allocator, link-monitor and prefix-manager dumps
//   - kv.go: erase and store
//   - config.go: config show/init
//   - shell.go: interactive mode on top of the repl package
//   - explain.go: user-facing error hints and exit codes
//
// Each command performs exactly one request against the Config Store.
package command
