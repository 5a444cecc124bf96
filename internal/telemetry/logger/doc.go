// Package logger provides structured logging for the confstore client.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, configuration and the process default
//   - context.go: context-aware logging with invocation request IDs
//   - redact.go: redaction of configuration payloads and secrets
//
// Configuration values are opaque and may carry credentials, so attributes
// named like a payload (value, blob) are reduced to their size and
// secret-looking attributes are replaced entirely. Config key names are
// never redacted.
package logger
