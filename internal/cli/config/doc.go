// Package config defines the confstore-cli configuration.
//
//   - cliconfig.go: CLIConfig struct (~/.confstore/cli.yaml)
//   - loader.go: layered loading (flags, CONFSTORE_* env, file, defaults)
//
// The ports section mirrors the ports config of a node: where the Config
// Store listens and which port the link monitor answers identity requests on.
package config
