// Package protocol implements the Config Store wire protocol.
//
// A message is carried in a frame:
//
//	+----------------+--------+-----------------+
//	| length (4, BE) | format | payload         |
//	+----------------+--------+-----------------+
//
// length counts the format byte plus the payload. The payload is a request or
// response encoded with one of two interchangeable codecs:
//
//   - compact.go: protobuf wire format (default)
//   - json.go: JSON, opt-in for debugging
//
// Both codecs share one logical schema (wire.go). A codec is selected once
// per invocation and used for both directions of an exchange.
package protocol
