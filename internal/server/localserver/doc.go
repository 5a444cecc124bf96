// Package localserver is an in-memory Config Store responder.
//
// It speaks the client framing on a unix or tcp listener, answers each
// request in the format it arrived in, and keeps keys in a map. It also
// answers node identity requests, so one instance can stand in for both the
// link monitor and the Config Store in tests and local runs.
//
// Nothing is persisted. One goroutine serves each accepted connection, and a
// connection carries a single request.
package localserver
