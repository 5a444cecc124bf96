package service

import (
	"context"
	"net"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/confstore-go/internal/core/domain"
	"github.com/yndnr/confstore-go/internal/server/localserver"
	"github.com/yndnr/confstore-go/internal/telemetry/metric"
)

func splitHostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, p, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(p)
	require.NoError(t, err)
	return host, port
}

func startStore(t *testing.T, opts ...localserver.Option) *localserver.Server {
	t.Helper()

	s := localserver.New("unix", filepath.Join(t.TempDir(), "cs.sock"), opts...)
	require.NoError(t, s.Listen())
	go s.Serve()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

func newTestDispatcher(t *testing.T, s *localserver.Server, format domain.Format, opts ...Option) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(NewInvocationContext(s.Endpoint(), format, time.Second, false), opts...)
	require.NoError(t, err)
	return d
}

type stateRecorder struct {
	mu     sync.Mutex
	states []string
}

func (r *stateRecorder) observe(_, _, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, to)
}

func (r *stateRecorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.states
	r.states = nil
	return out
}

func TestDispatcher_Dumps(t *testing.T) {
	store := localserver.NewStore()
	store.Put(domain.PrefixAllocatorKey, []byte("pa"))
	store.Put(domain.LinkMonitorKey, []byte("lm"))
	store.Put(domain.PrefixManagerKey, []byte("pm"))
	s := startStore(t, localserver.WithStore(store))

	d := newTestDispatcher(t, s, domain.FormatCompact)
	ctx := context.Background()

	tests := []struct {
		name   string
		dump   func(context.Context) (*domain.ConfigDump, error)
		kind   domain.Kind
		key    string
		schema string
		blob   string
	}{
		{"prefix-allocator", d.DumpPrefixAllocator, domain.KindDumpPrefixAllocator, domain.PrefixAllocatorKey, domain.PrefixAllocatorSchema, "pa"},
		{"link-monitor", d.DumpLinkMonitor, domain.KindDumpLinkMonitor, domain.LinkMonitorKey, domain.LinkMonitorSchema, "lm"},
		{"prefix-manager", d.DumpPrefixManager, domain.KindDumpPrefixManager, domain.PrefixManagerKey, domain.PrefixManagerSchema, "pm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.dump(ctx)
			require.NoError(t, err)
			assert.Equal(t, &domain.ConfigDump{Kind: tt.kind, Key: tt.key, Schema: tt.schema, Blob: []byte(tt.blob)}, got)
		})
	}
}

func TestDispatcher_DumpNotFound(t *testing.T) {
	s := startStore(t)
	d := newTestDispatcher(t, s, domain.FormatJSON)

	got, err := d.DumpPrefixAllocator(context.Background())
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), domain.PrefixAllocatorKey)
}

// Erasing a missing key reports NotFound and leaves the store untouched.
func TestDispatcher_EraseMissingKey(t *testing.T) {
	store := localserver.NewStore()
	store.Put("other", []byte("x"))
	s := startStore(t, localserver.WithStore(store))
	d := newTestDispatcher(t, s, domain.FormatCompact)

	ack, err := d.Erase(context.Background(), "missing-key")
	assert.Nil(t, ack)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{"other"}, store.Keys())
}

// A store of an unrelated key does not affect a later dump.
func TestDispatcher_StoreThenUnrelatedDump(t *testing.T) {
	store := localserver.NewStore()
	store.Put(domain.PrefixAllocatorKey, []byte{0x0a, 0x02})
	s := startStore(t, localserver.WithStore(store))
	d := newTestDispatcher(t, s, domain.FormatCompact)
	ctx := context.Background()

	before, err := d.DumpPrefixAllocator(ctx)
	require.NoError(t, err)

	ack, err := d.Store(ctx, "k1", []byte("v1"))
	require.NoError(t, err)
	assert.Equal(t, &domain.Ack{Kind: domain.KindStore, Key: "k1"}, ack)

	after, err := d.DumpPrefixAllocator(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	v, ok := store.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), v)
}

// The same sequence gives the same results in either wire format.
func TestDispatcher_FormatEquivalence(t *testing.T) {
	run := func(format domain.Format) []any {
		s := startStore(t)
		d := newTestDispatcher(t, s, format)
		ctx := context.Background()

		var results []any
		record := func(v any, err error) {
			results = append(results, v, domain.GetErrorCode(err))
		}

		record(d.Store(ctx, domain.LinkMonitorKey, []byte{0, 1, 2, 0xff}))
		record(d.DumpLinkMonitor(ctx))
		record(d.Erase(ctx, domain.LinkMonitorKey))
		record(d.DumpLinkMonitor(ctx))
		record(d.Erase(ctx, domain.LinkMonitorKey))
		return results
	}

	assert.Equal(t, run(domain.FormatCompact), run(domain.FormatJSON))
}

// Dumps that come back with a foreign key or schema fail in the lifecycle,
// not after it.
func TestDispatcher_DumpResponseMismatch(t *testing.T) {
	type dumpFunc func(*Dispatcher, context.Context) (*domain.ConfigDump, error)

	kinds := []struct {
		name    string
		dump    dumpFunc
		key     string
		command string
	}{
		{"prefix-allocator", (*Dispatcher).DumpPrefixAllocator, domain.PrefixAllocatorKey, "dump-prefix-allocator"},
		{"link-monitor", (*Dispatcher).DumpLinkMonitor, domain.LinkMonitorKey, "dump-link-monitor"},
		{"prefix-manager", (*Dispatcher).DumpPrefixManager, domain.PrefixManagerKey, "dump-prefix-manager"},
	}
	rewrites := []struct {
		name    string
		rewrite func(*domain.ConfigResponse)
	}{
		{"wrong schema", func(r *domain.ConfigResponse) { r.Schema = "openr.Wrong" }},
		{"wrong key", func(r *domain.ConfigResponse) { r.Key = "some-other-config" }},
	}

	for _, k := range kinds {
		for _, rw := range rewrites {
			t.Run(k.name+"/"+rw.name, func(t *testing.T) {
				store := localserver.NewStore()
				store.Put(k.key, []byte("blob"))
				s := startStore(t, localserver.WithStore(store), localserver.WithResponseRewrite(rw.rewrite))

				rec := &stateRecorder{}
				reg := metric.NewRegistry()
				d := newTestDispatcher(t, s, domain.FormatCompact, WithStateObserver(rec.observe), WithMetrics(reg))

				got, err := k.dump(d, context.Background())
				assert.Nil(t, got)
				assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
				assert.Equal(t, []string{StateResolved, StateConnected, StateSent, StateAwaiting, StateFailed, StateClosed}, rec.take())
				assert.Equal(t, 1.0, testutil.ToFloat64(reg.RequestsTotal.WithLabelValues(k.command, metric.OutcomeSchemaMismatch)))
				assert.Equal(t, 0.0, testutil.ToFloat64(reg.RequestsTotal.WithLabelValues(k.command, metric.OutcomeOK)))
			})
		}
	}
}

func TestDispatcher_AckKeyMismatch(t *testing.T) {
	s := startStore(t, localserver.WithResponseRewrite(func(r *domain.ConfigResponse) {
		r.Key = "not-" + r.Key
	}))
	rec := &stateRecorder{}
	d := newTestDispatcher(t, s, domain.FormatJSON, WithStateObserver(rec.observe))

	ack, err := d.Store(context.Background(), "k1", []byte("v"))
	assert.Nil(t, ack)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
	assert.Equal(t, []string{StateResolved, StateConnected, StateSent, StateAwaiting, StateFailed, StateClosed}, rec.take())
}

func TestDispatcher_Timeout(t *testing.T) {
	s := startStore(t, localserver.WithResponseDelay(2*time.Second))

	d, err := NewDispatcher(NewInvocationContext(s.Endpoint(), domain.FormatCompact, 100*time.Millisecond, false))
	require.NoError(t, err)

	start := time.Now()
	got, err := d.DumpLinkMonitor(context.Background())
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDispatcher_Unreachable(t *testing.T) {
	ep := domain.ServiceEndpoint{Address: "ipc://" + filepath.Join(t.TempDir(), "absent.sock")}
	d, err := NewDispatcher(NewInvocationContext(ep, domain.FormatCompact, time.Second, false))
	require.NoError(t, err)

	_, err = d.Erase(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.NotErrorIs(t, err, domain.ErrTimeout)
}

func TestDispatcher_RemoteFailure(t *testing.T) {
	s := startStore(t, localserver.WithReadOnly())
	d := newTestDispatcher(t, s, domain.FormatJSON)

	_, err := d.Store(context.Background(), "k1", []byte("v1"))
	assert.ErrorIs(t, err, domain.ErrRemote)
	assert.Contains(t, err.Error(), "read-only")
}

func TestDispatcher_InvalidArgument(t *testing.T) {
	s := startStore(t)
	rec := &stateRecorder{}
	d := newTestDispatcher(t, s, domain.FormatCompact, WithStateObserver(rec.observe))

	_, err := d.Erase(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, []string{StateFailed, StateClosed}, rec.take())

	_, err = d.Store(context.Background(), "  ", []byte("v"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = d.Do(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	assert.Zero(t, s.Served())
}

func TestDispatcher_Lifecycle(t *testing.T) {
	s := startStore(t)
	rec := &stateRecorder{}
	d := newTestDispatcher(t, s, domain.FormatCompact, WithStateObserver(rec.observe))
	ctx := context.Background()

	_, err := d.Store(ctx, "k", []byte("v"))
	require.NoError(t, err)
	assert.Equal(t, []string{StateResolved, StateConnected, StateSent, StateAwaiting, StateCompleted, StateClosed}, rec.take())

	_, err = d.Erase(ctx, "absent")
	require.Error(t, err)
	assert.Equal(t, []string{StateResolved, StateConnected, StateSent, StateAwaiting, StateFailed, StateClosed}, rec.take())
}

func TestDispatcher_Metrics(t *testing.T) {
	s := startStore(t)
	reg := metric.NewRegistry()
	d := newTestDispatcher(t, s, domain.FormatCompact, WithMetrics(reg))
	ctx := context.Background()

	_, err := d.Store(ctx, "k", []byte("v"))
	require.NoError(t, err)
	_, _ = d.Erase(ctx, "absent")
	_, _ = d.Erase(ctx, "absent")

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("store", metric.OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("erase", metric.OutcomeNotFound)))
	assert.Equal(t, 2, testutil.CollectAndCount(reg.RequestDuration))
}

func TestNewDispatcher_InvalidInvocation(t *testing.T) {
	_, err := NewDispatcher(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = NewDispatcher(&InvocationContext{Format: domain.FormatCompact, Timeout: time.Second})
	assert.ErrorIs(t, err, domain.ErrResolution)

	_, err = NewDispatcher(&InvocationContext{Endpoint: domain.ServiceEndpoint{Address: "tcp://h:1"}, Format: 9, Timeout: time.Second})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = NewDispatcher(&InvocationContext{Endpoint: domain.ServiceEndpoint{Address: "tcp://h:1"}, Format: domain.FormatJSON})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestNewInvocationContext(t *testing.T) {
	ep := domain.ServiceEndpoint{Address: "tcp://h:1"}

	a := NewInvocationContext(ep, 0, 0, true)
	b := NewInvocationContext(ep, domain.FormatJSON, 3*time.Second, false)

	assert.Equal(t, domain.FormatCompact, a.Format)
	assert.Equal(t, domain.DefaultTimeout, a.Timeout)
	assert.True(t, a.Verbose)
	assert.Len(t, a.RequestID, 26)
	assert.NotEqual(t, a.RequestID, b.RequestID)
	assert.Equal(t, domain.FormatJSON, b.Format)
	assert.Equal(t, 3*time.Second, b.Timeout)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, metric.OutcomeOK},
		{domain.ErrNotFound.WithDetails("k"), metric.OutcomeNotFound},
		{domain.ErrTimeout, metric.OutcomeTimeout},
		{domain.ErrTransport, metric.OutcomeTransport},
		{domain.ErrResolution.WithCause(domain.ErrTransport), metric.OutcomeResolution},
		{domain.ErrSchemaMismatch, metric.OutcomeSchemaMismatch},
		{domain.ErrRemote, metric.OutcomeRemote},
		{domain.ErrInvalidArgument, metric.OutcomeInvalid},
		{context.Canceled, metric.OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}
