package domain

import (
	"fmt"
	"strings"
)

// Status is the outcome reported by the daemon for one request.
type Status uint8

const (
	StatusUnspecified Status = iota
	StatusOK
	StatusNotFound
	StatusFailed
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	default:
		return "unspecified"
	}
}

// ParseStatus parses a wire status name.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "ok":
		return StatusOK, nil
	case "not_found":
		return StatusNotFound, nil
	case "failed":
		return StatusFailed, nil
	}
	return StatusUnspecified, fmt.Errorf("unknown status %q", s)
}

// ConfigResponse is the decoded answer to one ConfigRequest.
// Kind always mirrors the kind of the request it answers.
type ConfigResponse struct {
	Kind    Kind
	Status  Status
	Message string // Daemon-supplied detail, mostly for StatusFailed

	Key    string
	Schema string // Discriminator of Blob's schema (dump kinds only)
	Blob   []byte // Opaque config payload (dump kinds only)

	NodeName string // Identity kind only
}

// OK reports whether the daemon accepted the request.
func (r *ConfigResponse) OK() bool {
	return r != nil && r.Status == StatusOK
}

// Err maps a non-OK status to the matching domain error.
func (r *ConfigResponse) Err() error {
	if r == nil {
		return ErrSchemaMismatch.WithDetails("empty response")
	}
	switch r.Status {
	case StatusOK:
		return nil
	case StatusNotFound:
		key := r.Key
		if key == "" {
			key = r.Kind.String()
		}
		return ErrNotFound.WithDetails(key)
	case StatusFailed:
		msg := r.Message
		if msg == "" {
			msg = "no detail"
		}
		return ErrRemote.WithDetails(msg)
	default:
		return ErrSchemaMismatch.WithDetails(fmt.Sprintf("response status %d", uint8(r.Status)))
	}
}

// ConfigDump is a structured config read from the store.
type ConfigDump struct {
	Kind   Kind   `json:"kind" yaml:"kind"`
	Key    string `json:"key" yaml:"key"`
	Schema string `json:"schema" yaml:"schema"`
	Blob   []byte `json:"blob" yaml:"blob"`
}

// Ack acknowledges a mutating request.
type Ack struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	Key  string `json:"key" yaml:"key"`
}

// MarshalText lets Kind render by name in JSON/YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
