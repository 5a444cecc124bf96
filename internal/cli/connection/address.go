package connection

import (
	"fmt"
	"net"
	"strings"

	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/yndnr/confstore-go/internal/core/domain"
)

// Address schemes accepted in endpoint addresses.
const (
	SchemeIPC  = "ipc://"
	SchemeUnix = "unix://"
	SchemeTCP  = "tcp://"
)

// Address is a dialable network address.
type Address struct {
	Network string // "unix" or "tcp"
	Addr    string
}

// String returns network and address in URL form.
func (a Address) String() string {
	return a.Network + "://" + a.Addr
}

// ParseAddress converts an endpoint address into a dialable address.
//
// Accepted forms:
//
//	ipc:///tmp/config_store_cmd_node1   unix socket
//	unix:///run/confstore.sock          unix socket
//	tcp://10.0.0.1:60006                tcp
//	/ip4/10.0.0.1/tcp/60006             multiaddr (ip4, ip6, dns, unix)
//	node1.example:60006                 tcp
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, domain.ErrResolution.WithDetails("empty endpoint address")
	}

	switch {
	case strings.HasPrefix(s, SchemeIPC):
		return unixAddress(s, strings.TrimPrefix(s, SchemeIPC))
	case strings.HasPrefix(s, SchemeUnix):
		return unixAddress(s, strings.TrimPrefix(s, SchemeUnix))
	case strings.HasPrefix(s, SchemeTCP):
		return tcpAddress(s, strings.TrimPrefix(s, SchemeTCP))
	case strings.HasPrefix(s, "/"):
		return multiaddrAddress(s)
	case strings.Contains(s, "://"):
		return Address{}, domain.ErrResolution.WithDetails(fmt.Sprintf("unsupported address scheme in %q", s))
	}
	return tcpAddress(s, s)
}

func unixAddress(raw, path string) (Address, error) {
	if path == "" {
		return Address{}, domain.ErrResolution.WithDetails(fmt.Sprintf("missing socket path in %q", raw))
	}
	return Address{Network: "unix", Addr: path}, nil
}

func tcpAddress(raw, hostport string) (Address, error) {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return Address{}, domain.ErrResolution.WithCause(err).WithDetails(fmt.Sprintf("bad tcp address %q", raw))
	}
	if port == "" {
		return Address{}, domain.ErrResolution.WithDetails(fmt.Sprintf("missing port in %q", raw))
	}
	return Address{Network: "tcp", Addr: net.JoinHostPort(host, port)}, nil
}

func multiaddrAddress(raw string) (Address, error) {
	ma, err := multiaddr.NewMultiaddr(raw)
	if err != nil {
		return Address{}, domain.ErrResolution.WithCause(err).WithDetails(fmt.Sprintf("bad multiaddr %q", raw))
	}

	// manet does not resolve names; dns components are dialed as host:port.
	for _, code := range []int{multiaddr.P_DNS, multiaddr.P_DNS4, multiaddr.P_DNS6} {
		host, err := ma.ValueForProtocol(code)
		if err != nil {
			continue
		}
		port, err := ma.ValueForProtocol(multiaddr.P_TCP)
		if err != nil {
			return Address{}, domain.ErrResolution.WithDetails(fmt.Sprintf("multiaddr %q has no tcp port", raw))
		}
		return Address{Network: "tcp", Addr: net.JoinHostPort(host, port)}, nil
	}

	na, err := manet.ToNetAddr(ma)
	if err != nil {
		return Address{}, domain.ErrResolution.WithCause(err).WithDetails(fmt.Sprintf("undialable multiaddr %q", raw))
	}
	switch na.Network() {
	case "tcp", "tcp4", "tcp6":
		return Address{Network: "tcp", Addr: na.String()}, nil
	case "unix":
		return Address{Network: "unix", Addr: na.String()}, nil
	}
	return Address{}, domain.ErrResolution.WithDetails(fmt.Sprintf("multiaddr %q is not a stream transport", raw))
}
