package domain

import (
	"fmt"
	"strings"
	"time"
)

// ServiceEndpoint identifies one running Config Store instance.
// It is derived once per invocation and never mutated.
type ServiceEndpoint struct {
	Address string `json:"address"`
}

// String returns the endpoint address.
func (e ServiceEndpoint) String() string {
	return e.Address
}

// IsZero reports whether no address is set.
func (e ServiceEndpoint) IsZero() bool {
	return strings.TrimSpace(e.Address) == ""
}

// Format selects the wire encoding for one invocation.
type Format uint8

const (
	// FormatCompact is the dense binary encoding (default).
	FormatCompact Format = iota + 1
	// FormatJSON is the human-readable encoding.
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatCompact:
		return "compact"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f == FormatCompact || f == FormatJSON
}

// ParseFormat parses a format name. Empty selects FormatCompact.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "compact", "binary":
		return FormatCompact, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown wire format %q", s))
}

// DefaultTimeout bounds one request-response exchange when none is configured.
const DefaultTimeout = 5 * time.Second
