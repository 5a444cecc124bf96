package metric

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}
	if r.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if r.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
}

func TestRecordRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordRequest("erase", OutcomeOK)
	r.RecordRequest("erase", OutcomeNotFound)
	r.RecordRequest("erase", OutcomeNotFound)
	r.RecordRequest("store", OutcomeTimeout)

	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("erase", OutcomeNotFound)); got != 2 {
		t.Errorf("erase/not_found = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("store", OutcomeTimeout)); got != 1 {
		t.Errorf("store/timeout = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.RequestsTotal); got != 3 {
		t.Errorf("series = %d, want 3", got)
	}
}

func TestObserveRequestDuration(t *testing.T) {
	r := NewRegistry()

	r.ObserveRequestDuration("dump-link-monitor", 3*time.Millisecond)
	r.ObserveRequestDuration("dump-link-monitor", 20*time.Millisecond)

	if got := testutil.CollectAndCount(r.RequestDuration); got != 1 {
		t.Errorf("series = %d, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.RecordRequest("store", OutcomeOK)
	r.ObserveRequestDuration("store", 2*time.Millisecond)

	path := filepath.Join(t.TempDir(), "confstore.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	bodyStr := string(body)

	if !strings.Contains(bodyStr, `confstore_client_requests_total{command="store",outcome="ok"} 1`) {
		t.Errorf("expected requests_total for store ok, got:\n%s", bodyStr)
	}
	if !strings.Contains(bodyStr, `confstore_client_request_duration_seconds_count{command="store"} 1`) {
		t.Errorf("expected request_duration_seconds_count for store, got:\n%s", bodyStr)
	}
	if strings.Contains(bodyStr, "go_goroutines") {
		t.Error("runtime metrics should not be registered")
	}
}
