package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yndnr/confstore-go/internal/core/domain"
	"github.com/yndnr/confstore-go/internal/telemetry/logger"
)

const (
	// DefaultURLPrefix is the address prefix of a node-local Config Store.
	DefaultURLPrefix = "ipc:///tmp/config_store_cmd"

	// DefaultLinkMonitorCmdPort is the link monitor command port used for
	// node-name lookups.
	DefaultLinkMonitorCmdPort = 60006
)

// NodeLookup maps a host and link-monitor port to the node name.
type NodeLookup interface {
	NodeName(ctx context.Context, host string, port int) (string, error)
}

// LookupFunc adapts a function to NodeLookup.
type LookupFunc func(ctx context.Context, host string, port int) (string, error)

// NodeName calls f.
func (f LookupFunc) NodeName(ctx context.Context, host string, port int) (string, error) {
	return f(ctx, host, port)
}

// Resolver derives the Config Store endpoint for an invocation.
type Resolver struct {
	prefix string
	lookup NodeLookup
}

// NewResolver creates a resolver. An empty prefix selects DefaultURLPrefix.
func NewResolver(lookup NodeLookup, prefix string) *Resolver {
	if prefix == "" {
		prefix = DefaultURLPrefix
	}
	return &Resolver{prefix: prefix, lookup: lookup}
}

// Resolve returns override verbatim when it is set. Otherwise it looks up the
// node name of hostname and returns prefix + "_" + nodeName. A port <= 0
// selects DefaultLinkMonitorCmdPort.
//
// Lookup failures are returned as ErrResolution and are never retried.
func (r *Resolver) Resolve(ctx context.Context, override, hostname string, port int) (domain.ServiceEndpoint, error) {
	if override != "" {
		return domain.ServiceEndpoint{Address: override}, nil
	}

	if port <= 0 {
		port = DefaultLinkMonitorCmdPort
	}
	if strings.TrimSpace(hostname) == "" {
		return domain.ServiceEndpoint{}, domain.ErrResolution.WithDetails("no hostname to look up")
	}
	if r.lookup == nil {
		return domain.ServiceEndpoint{}, domain.ErrResolution.WithDetails("no node lookup configured")
	}

	name, err := r.lookup.NodeName(ctx, hostname, port)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrResolution.Code) {
			return domain.ServiceEndpoint{}, err
		}
		return domain.ServiceEndpoint{}, domain.ErrResolution.WithCause(err).
			WithDetails(fmt.Sprintf("node name of %s:%d: %v", hostname, port, err))
	}
	if err := validateNodeName(name); err != nil {
		return domain.ServiceEndpoint{}, err
	}

	ep := domain.ServiceEndpoint{Address: r.prefix + "_" + name}
	logger.L(ctx).Debug("endpoint resolved", "host", hostname, "port", port, "node", name, "endpoint", ep.Address)
	return ep, nil
}

// validateNodeName rejects names that cannot be part of a socket path.
func validateNodeName(name string) error {
	if name == "" {
		return domain.ErrResolution.WithDetails("empty node name")
	}
	if strings.ContainsAny(name, "/\\ \t\r\n") {
		return domain.ErrResolution.WithDetails(fmt.Sprintf("node name %q is not routable", name))
	}
	return nil
}
