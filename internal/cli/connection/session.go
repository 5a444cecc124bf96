package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/yndnr/confstore-go/internal/core/domain"
	"github.com/yndnr/confstore-go/internal/protocol"
	"github.com/yndnr/confstore-go/internal/telemetry/logger"
)

// Session is a short-lived connection to one Config Store endpoint. It
// carries exactly one request and one response.
type Session struct {
	endpoint domain.ServiceEndpoint
	addr     Address
	deadline time.Time
	conn     net.Conn

	mu       sync.Mutex
	format   domain.Format
	sent     bool
	received bool
	closed   bool
	stop     func() bool
}

// Open parses the endpoint address and connects to it. The timeout is one
// budget for the connect and the later exchange together; zero selects
// domain.DefaultTimeout.
func Open(ctx context.Context, endpoint domain.ServiceEndpoint, timeout time.Duration) (*Session, error) {
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}

	addr, err := ParseAddress(endpoint.Address)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, addr.Network, addr.Addr)
	if err != nil {
		return nil, classify(ctx, "connect", err)
	}

	logger.L(ctx).Debug("session opened", "endpoint", endpoint.Address, "network", addr.Network)

	return &Session{
		endpoint: endpoint,
		addr:     addr,
		deadline: deadline,
		conn:     conn,
	}, nil
}

// Endpoint returns the endpoint this session is connected to.
func (s *Session) Endpoint() domain.ServiceEndpoint {
	return s.endpoint
}

// Request sends one encoded request and waits for the encoded response.
// The response must come back in the same wire format. A session accepts a
// single request; later calls fail with ErrTransport.
func (s *Session) Request(ctx context.Context, format domain.Format, payload []byte) ([]byte, error) {
	if err := s.Send(ctx, format, payload); err != nil {
		return nil, err
	}
	return s.Receive(ctx)
}

// Send writes the request frame. Send and the matching Receive share the
// deadline fixed by Open.
func (s *Session) Send(ctx context.Context, format domain.Format, payload []byte) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return domain.ErrTransport.WithDetails("session closed")
	case s.sent:
		s.mu.Unlock()
		return domain.ErrTransport.WithDetails("session already used")
	}
	s.sent = true
	s.format = format
	s.mu.Unlock()

	if err := s.conn.SetDeadline(s.deadline); err != nil {
		return classify(ctx, "set deadline", err)
	}

	// Cancellation unblocks pending I/O by expiring the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetDeadline(time.Unix(1, 0))
	})
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()

	if err := protocol.WriteFrame(s.conn, format, payload); err != nil {
		stop()
		if domain.IsDomainError(err, "") {
			return err
		}
		return classify(ctx, "send", err)
	}

	logger.L(ctx).Debug("request sent", "endpoint", s.endpoint.Address, "format", format.String(), "size", len(payload))
	return nil
}

// Receive blocks until the response frame arrives or the deadline expires.
func (s *Session) Receive(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return nil, domain.ErrTransport.WithDetails("session closed")
	case !s.sent:
		s.mu.Unlock()
		return nil, domain.ErrTransport.WithDetails("receive before send")
	case s.received:
		s.mu.Unlock()
		return nil, domain.ErrTransport.WithDetails("session already used")
	}
	s.received = true
	format, stop := s.format, s.stop
	s.mu.Unlock()

	if stop != nil {
		defer stop()
	}

	got, resp, err := protocol.ReadFrame(s.conn)
	if err != nil {
		if domain.IsDomainError(err, "") {
			return nil, err
		}
		return nil, classify(ctx, "receive", err)
	}
	if got != format {
		return nil, domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("sent %s, received %s", format, got))
	}

	logger.L(ctx).Debug("response received", "endpoint", s.endpoint.Address, "size", len(resp))
	return resp, nil
}

// Close releases the connection. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.stop != nil {
		s.stop()
	}
	return s.conn.Close()
}

// Exchange opens a session, performs one request and closes the session on
// every path.
func Exchange(ctx context.Context, endpoint domain.ServiceEndpoint, timeout time.Duration, format domain.Format, payload []byte) ([]byte, error) {
	s, err := Open(ctx, endpoint, timeout)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return s.Request(ctx, format, payload)
}

// classify maps a network error onto the client error kinds.
func classify(ctx context.Context, op string, err error) error {
	switch ctxErr := ctx.Err(); {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		return domain.ErrTimeout.WithCause(ctxErr).WithDetails(op)
	case errors.Is(ctxErr, context.Canceled):
		return domain.ErrTransport.WithCause(ctxErr).WithDetails(op + ": canceled")
	}

	var netErr net.Error
	if errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.ErrTimeout.WithCause(err).WithDetails(op)
	}

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.ErrTransport.WithCause(err).WithDetails(op + ": connection closed by peer")
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ENOENT):
		return domain.ErrTransport.WithCause(err).WithDetails(op + ": nothing listening")
	}
	return domain.ErrTransport.WithCause(err).WithDetails(op)
}
