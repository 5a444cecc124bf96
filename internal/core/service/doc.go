// Package service implements the Config Store client core.
//
//   - resolver.go: endpoint resolution from an override or the node name
//   - identity.go: node-name lookups (link monitor, static)
//   - invocation.go: per-invocation settings and request id
//   - lifecycle.go: per-command state machine
//   - dispatcher.go: the five Config Store operations
//
// Each dispatcher operation performs exactly one request/response exchange
// on its own session. Nothing is retried.
package service
