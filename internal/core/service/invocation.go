package service

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/confstore-go/internal/core/domain"
)

// InvocationContext carries the settings of one CLI invocation into the
// command it runs. It is created once, from already resolved inputs, and is
// not shared across invocations.
type InvocationContext struct {
	Verbose  bool
	Timeout  time.Duration
	Endpoint domain.ServiceEndpoint
	Format   domain.Format

	// RequestID correlates the log lines of one invocation.
	RequestID string
}

// NewInvocationContext creates an invocation context with a fresh request id.
// A zero format selects Compact and a zero timeout selects
// domain.DefaultTimeout.
func NewInvocationContext(endpoint domain.ServiceEndpoint, format domain.Format, timeout time.Duration, verbose bool) *InvocationContext {
	if format == 0 {
		format = domain.FormatCompact
	}
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}
	return &InvocationContext{
		Verbose:   verbose,
		Timeout:   timeout,
		Endpoint:  endpoint,
		Format:    format,
		RequestID: ulid.Make().String(),
	}
}

// Validate checks that the context is usable for a dispatch.
func (inv *InvocationContext) Validate() error {
	if inv == nil {
		return domain.ErrInvalidArgument.WithDetails("invocation context is nil")
	}
	if inv.Endpoint.IsZero() {
		return domain.ErrResolution.WithDetails("no endpoint resolved")
	}
	if !inv.Format.Valid() {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("wire format %d", uint8(inv.Format)))
	}
	if inv.Timeout <= 0 {
		return domain.ErrInvalidArgument.WithDetails("timeout must be positive")
	}
	return nil
}
