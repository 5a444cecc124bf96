// Package domain defines the core domain models of the Config Store client.
//
// Domain models are pure values without IO dependencies:
//
//   - ConfigRequest: closed set of requests (dumps, erase, store, identity)
//   - ConfigResponse: decoded answer, with ConfigDump and Ack views
//   - ServiceEndpoint and Format: per-invocation addressing and encoding
//   - Errors: coded error taxonomy matched with errors.Is
package domain
