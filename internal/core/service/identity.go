package service

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/yndnr/confstore-go/internal/cli/connection"
	"github.com/yndnr/confstore-go/internal/core/domain"
	"github.com/yndnr/confstore-go/internal/protocol"
)

// LinkMonitorLookup asks the link monitor at tcp://host:port for its node
// name, using the same framing and codec as Config Store requests.
type LinkMonitorLookup struct {
	Timeout time.Duration
	Format  domain.Format
}

// NodeName implements NodeLookup.
func (l LinkMonitorLookup) NodeName(ctx context.Context, host string, port int) (string, error) {
	format := l.Format
	if format == 0 {
		format = domain.FormatCompact
	}
	codec, err := protocol.New(format)
	if err != nil {
		return "", err
	}

	payload, err := codec.EncodeRequest(domain.Identity{})
	if err != nil {
		return "", err
	}

	ep := domain.ServiceEndpoint{Address: connection.SchemeTCP + net.JoinHostPort(host, strconv.Itoa(port))}
	data, err := connection.Exchange(ctx, ep, l.Timeout, format, payload)
	if err != nil {
		return "", domain.ErrResolution.WithCause(err).WithDetails(fmt.Sprintf("link monitor %s: %v", ep.Address, err))
	}

	resp, err := codec.DecodeResponse(data, domain.KindIdentity)
	if err != nil {
		return "", domain.ErrResolution.WithCause(err).WithDetails(fmt.Sprintf("link monitor %s: %v", ep.Address, err))
	}
	if err := resp.Err(); err != nil {
		return "", domain.ErrResolution.WithCause(err).WithDetails(fmt.Sprintf("link monitor %s: %v", ep.Address, err))
	}
	return resp.NodeName, nil
}

// StaticLookup always returns the same node name.
type StaticLookup string

// NodeName implements NodeLookup.
func (s StaticLookup) NodeName(context.Context, string, int) (string, error) {
	if s == "" {
		return "", domain.ErrResolution.WithDetails("static node name is empty")
	}
	return string(s), nil
}
