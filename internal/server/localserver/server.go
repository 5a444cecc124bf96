package localserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/confstore-go/internal/core/domain"
	"github.com/yndnr/confstore-go/internal/protocol"
	"github.com/yndnr/confstore-go/internal/telemetry/logger"
)

// Server serves Config Store requests from an in-memory Store.
type Server struct {
	network string
	address string

	store    *Store
	handler  *Handler
	delay    time.Duration
	timeout  time.Duration
	rewrite  func(*domain.ConfigResponse)
	log      logger.Logger
	listener net.Listener

	running  atomic.Bool
	served   atomic.Int64
	wg       sync.WaitGroup
	done     chan struct{}
	doneOnce sync.Once
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	store    *Store
	nodeName string
	readOnly bool
	delay    time.Duration
	timeout  time.Duration
	rewrite  func(*domain.ConfigResponse)
	log      logger.Logger
}

// WithStore serves from an existing store.
func WithStore(s *Store) Option {
	return func(o *serverOptions) { o.store = s }
}

// WithNodeName sets the name returned to identity requests.
func WithNodeName(name string) Option {
	return func(o *serverOptions) { o.nodeName = name }
}

// WithReadOnly rejects erase and store with a failed status.
func WithReadOnly() Option {
	return func(o *serverOptions) { o.readOnly = true }
}

// WithResponseDelay holds every response back for d.
func WithResponseDelay(d time.Duration) Option {
	return func(o *serverOptions) { o.delay = d }
}

// WithReadTimeout bounds how long a connection may take to send its request.
func WithReadTimeout(d time.Duration) Option {
	return func(o *serverOptions) { o.timeout = d }
}

// WithResponseRewrite lets fn modify every response before it is encoded,
// to impersonate a daemon that answers with the wrong key or schema.
func WithResponseRewrite(fn func(*domain.ConfigResponse)) Option {
	return func(o *serverOptions) { o.rewrite = fn }
}

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) { o.log = l }
}

// New creates a server for network ("unix" or "tcp") and address.
func New(network, address string, opts ...Option) *Server {
	o := serverOptions{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = NewStore()
	}
	if o.log == nil {
		o.log = logger.Default()
	}

	return &Server{
		network: network,
		address: address,
		store:   o.store,
		handler: NewHandler(o.store, o.nodeName, o.readOnly),
		delay:   o.delay,
		timeout: o.timeout,
		rewrite: o.rewrite,
		log:     o.log.With("component", "localserver"),
		done:    make(chan struct{}),
	}
}

// Store returns the backing store.
func (s *Server) Store() *Store {
	return s.store
}

// Served returns the number of requests answered so far.
func (s *Server) Served() int64 {
	return s.served.Load()
}

// Listen binds the listener without serving.
func (s *Server) Listen() error {
	ln, err := net.Listen(s.network, s.address)
	if err != nil {
		return fmt.Errorf("localserver: listen %s %s: %w", s.network, s.address, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Endpoint returns the client address of the bound listener.
func (s *Server) Endpoint() domain.ServiceEndpoint {
	addr := s.Addr()
	if addr == nil {
		return domain.ServiceEndpoint{}
	}
	if addr.Network() == "unix" {
		return domain.ServiceEndpoint{Address: "ipc://" + addr.String()}
	}
	return domain.ServiceEndpoint{Address: "tcp://" + addr.String()}
}

// Serve accepts connections until Shutdown. Listen must have been called.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("localserver: serve before listen")
	}
	s.running.Store(true)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// ListenAndServe binds the listener and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown stops accepting connections and waits for active ones to finish
// or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)
	s.doneOnce.Do(func() { close(s.done) })

	var closeErr error
	if s.listener != nil {
		closeErr = s.listener.Close()
		if errors.Is(closeErr, net.ErrClosed) {
			closeErr = nil
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleConnection answers exactly one request on conn.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
		return
	}

	format, payload, err := protocol.ReadFrame(conn)
	if err != nil {
		s.log.Debug("read request failed", "remote", conn.RemoteAddr(), "error", err)
		return
	}

	codec, err := protocol.New(format)
	if err != nil {
		s.log.Debug("unsupported format", "format", format.String())
		return
	}

	req, err := codec.DecodeRequest(payload, domain.KindUnspecified)
	if err != nil {
		s.log.Warn("malformed request", "format", format.String(), "error", err)
		return
	}

	resp := s.handler.Handle(req)
	if s.rewrite != nil {
		s.rewrite(resp)
	}
	s.log.Debug("request handled", "kind", req.Kind().String(), "status", resp.Status.String(), "key", resp.Key)

	data, err := codec.EncodeResponse(resp)
	if err != nil {
		s.log.Error("encode response failed", "kind", req.Kind().String(), "error", err)
		return
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-s.done:
			return
		}
	}

	if err := protocol.WriteFrame(conn, format, data); err != nil {
		s.log.Debug("write response failed", "error", err)
		return
	}
	s.served.Add(1)
}
