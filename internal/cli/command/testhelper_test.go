package command

import (
	"bytes"
	"context"
	"io"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/yndnr/confstore-go/internal/server/localserver"
	"github.com/yndnr/confstore-go/internal/telemetry/logger"
)

// startStore starts a unix socket responder at path (or a temp path).
func startStore(t *testing.T, path string, opts ...localserver.Option) *localserver.Server {
	t.Helper()

	if path == "" {
		path = filepath.Join(t.TempDir(), "cs.sock")
	}
	return startServer(t, "unix", path, opts...)
}

func startServer(t *testing.T, network, address string, opts ...localserver.Option) *localserver.Server {
	t.Helper()

	s := localserver.New(network, address, opts...)
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	go s.Serve()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

// isolate points HOME at a temp dir so no user config file is read.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// runApp runs the CLI in-process and returns stdout and stderr. The process
// logger installed by the run is reset afterwards.
func runApp(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = stdin

	prev := logger.Default()
	err := app.RunContext(context.Background(), append([]string{"confstore-cli"}, args...))
	logger.SetDefault(prev)
	return stdout.String(), stderr.String(), err
}

func hostPort(t *testing.T, addr net.Addr) (string, string) {
	t.Helper()
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		t.Fatalf("SplitHostPort(%q) error = %v", addr, err)
	}
	if _, err := strconv.Atoi(port); err != nil {
		t.Fatalf("port %q: %v", port, err)
	}
	return host, port
}
