package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/confstore-go/internal/cli/connection"
	"github.com/yndnr/confstore-go/internal/core/domain"
	"github.com/yndnr/confstore-go/internal/protocol"
	"github.com/yndnr/confstore-go/internal/telemetry/logger"
	"github.com/yndnr/confstore-go/internal/telemetry/metric"
)

// Dispatcher runs Config Store operations for one invocation. Every
// operation opens its own session, sends one request, awaits one response
// and closes the session.
type Dispatcher struct {
	inv      *InvocationContext
	codec    protocol.Codec
	metrics  *metric.Registry
	observer StateObserver
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics records request counts and durations in r.
func WithMetrics(r *metric.Registry) Option {
	return func(d *Dispatcher) {
		d.metrics = r
	}
}

// WithStateObserver reports every lifecycle transition to fn.
func WithStateObserver(fn StateObserver) Option {
	return func(d *Dispatcher) {
		d.observer = fn
	}
}

// NewDispatcher creates a dispatcher bound to inv.
func NewDispatcher(inv *InvocationContext, opts ...Option) (*Dispatcher, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	codec, err := protocol.New(inv.Format)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{inv: inv, codec: codec}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Invocation returns the invocation context the dispatcher is bound to.
func (d *Dispatcher) Invocation() *InvocationContext {
	return d.inv
}

// DumpPrefixAllocator reads the prefix allocator config.
func (d *Dispatcher) DumpPrefixAllocator(ctx context.Context) (*domain.ConfigDump, error) {
	return d.dump(ctx, domain.DumpPrefixAllocator{})
}

// DumpLinkMonitor reads the link monitor config.
func (d *Dispatcher) DumpLinkMonitor(ctx context.Context) (*domain.ConfigDump, error) {
	return d.dump(ctx, domain.DumpLinkMonitor{})
}

// DumpPrefixManager reads the prefix manager config.
func (d *Dispatcher) DumpPrefixManager(ctx context.Context) (*domain.ConfigDump, error) {
	return d.dump(ctx, domain.DumpPrefixManager{})
}

// Erase removes key. A missing key fails with ErrNotFound.
func (d *Dispatcher) Erase(ctx context.Context, key string) (*domain.Ack, error) {
	return d.ack(ctx, domain.Erase{Key: key}, key)
}

// Store writes value under key. The value is sent as given; reading it from
// a file or stdin is the caller's job.
func (d *Dispatcher) Store(ctx context.Context, key string, value []byte) (*domain.Ack, error) {
	return d.ack(ctx, domain.Store{Key: key, Value: value}, key)
}

func (d *Dispatcher) dump(ctx context.Context, req domain.ConfigRequest) (*domain.ConfigDump, error) {
	resp, err := d.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	key, _, _ := domain.DumpKey(req.Kind())
	return &domain.ConfigDump{
		Kind:   resp.Kind,
		Key:    key,
		Schema: resp.Schema,
		Blob:   resp.Blob,
	}, nil
}

func (d *Dispatcher) ack(ctx context.Context, req domain.ConfigRequest, key string) (*domain.Ack, error) {
	resp, err := d.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return &domain.Ack{Kind: resp.Kind, Key: key}, nil
}

// validateResponse checks that resp answers req: dumps must carry the
// well-known key and schema, erase and store must echo the request key.
func validateResponse(req domain.ConfigRequest, resp *domain.ConfigResponse) error {
	var key string
	switch r := req.(type) {
	case domain.Erase:
		key = r.Key
	case domain.Store:
		key = r.Key
	default:
		k, schema, ok := domain.DumpKey(req.Kind())
		if !ok {
			return nil
		}
		if resp.Schema != schema {
			return domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("%s: schema %q, want %q", req.Kind(), resp.Schema, schema))
		}
		key = k
	}
	if resp.Key != "" && resp.Key != key {
		return domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("%s: response for key %q", req.Kind(), resp.Key))
	}
	return nil
}

// Do performs one exchange for req and returns the decoded response when the
// daemon reports success and the response matches req. Non-OK statuses map to ErrNotFound or ErrRemote.
func (d *Dispatcher) Do(ctx context.Context, req domain.ConfigRequest) (resp *domain.ConfigResponse, err error) {
	if req == nil {
		return nil, domain.ErrInvalidArgument.WithDetails("request is nil")
	}

	command := req.Kind().String()
	ctx = logger.WithRequestID(ctx, d.inv.RequestID)
	ctx = logger.WithCommand(ctx, command)
	log := logger.L(ctx)

	lc := newLifecycle(command, d.observer)
	start := time.Now()

	var session *connection.Session
	defer func() {
		if session != nil {
			if cerr := session.Close(); cerr != nil {
				log.Debug("session close failed", "error", cerr)
			}
		}
		lc.close(ctx)
		d.record(command, err, time.Since(start))
	}()

	payload, err := d.codec.EncodeRequest(req)
	if err != nil {
		return nil, lc.fail(ctx, err)
	}

	if d.inv.Endpoint.IsZero() {
		return nil, lc.fail(ctx, domain.ErrResolution.WithDetails("no endpoint resolved"))
	}
	if err := lc.advance(ctx, eventResolve); err != nil {
		return nil, lc.fail(ctx, err)
	}

	session, err = connection.Open(ctx, d.inv.Endpoint, d.inv.Timeout)
	if err != nil {
		return nil, lc.fail(ctx, err)
	}
	if err := lc.advance(ctx, eventConnect); err != nil {
		return nil, lc.fail(ctx, err)
	}

	if err := session.Send(ctx, d.inv.Format, payload); err != nil {
		return nil, lc.fail(ctx, err)
	}
	if err := lc.advance(ctx, eventSend); err != nil {
		return nil, lc.fail(ctx, err)
	}
	if err := lc.advance(ctx, eventAwait); err != nil {
		return nil, lc.fail(ctx, err)
	}

	data, err := session.Receive(ctx)
	if err != nil {
		return nil, lc.fail(ctx, err)
	}

	resp, err = d.codec.DecodeResponse(data, req.Kind())
	if err != nil {
		return nil, lc.fail(ctx, err)
	}
	if err := resp.Err(); err != nil {
		return nil, lc.fail(ctx, err)
	}
	if err := validateResponse(req, resp); err != nil {
		return nil, lc.fail(ctx, err)
	}

	if err := lc.advance(ctx, eventComplete); err != nil {
		return nil, lc.fail(ctx, err)
	}

	log.Debug("command completed", "endpoint", d.inv.Endpoint.Address, "format", d.inv.Format.String())
	return resp, nil
}

func (d *Dispatcher) record(command string, err error, elapsed time.Duration) {
	if d.metrics == nil {
		return
	}
	d.metrics.RecordRequest(command, Outcome(err))
	d.metrics.ObserveRequestDuration(command, elapsed)
}

// Outcome maps an operation error to its metric outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metric.OutcomeOK
	case errors.Is(err, domain.ErrResolution):
		return metric.OutcomeResolution
	case errors.Is(err, domain.ErrNotFound):
		return metric.OutcomeNotFound
	case errors.Is(err, domain.ErrRemote):
		return metric.OutcomeRemote
	case errors.Is(err, domain.ErrTimeout):
		return metric.OutcomeTimeout
	case errors.Is(err, domain.ErrTransport):
		return metric.OutcomeTransport
	case errors.Is(err, domain.ErrSchemaMismatch):
		return metric.OutcomeSchemaMismatch
	case errors.Is(err, domain.ErrInvalidArgument):
		return metric.OutcomeInvalid
	}
	return metric.OutcomeError
}
