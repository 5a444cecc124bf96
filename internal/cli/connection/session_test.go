package connection

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/confstore-go/internal/core/domain"
	"github.com/yndnr/confstore-go/internal/protocol"
)

// responder accepts connections on a unix socket and runs handle on each.
func responder(t *testing.T, handle func(net.Conn)) domain.ServiceEndpoint {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cs.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				handle(conn)
			}()
		}
	}()

	return domain.ServiceEndpoint{Address: SchemeIPC + path}
}

// echo replies with the request frame, prefixed with "re:".
func echo(conn net.Conn) {
	format, payload, err := protocol.ReadFrame(conn)
	if err != nil {
		return
	}
	_ = protocol.WriteFrame(conn, format, append([]byte("re:"), payload...))
}

func TestSession_Request(t *testing.T) {
	ep := responder(t, echo)

	s, err := Open(context.Background(), ep, time.Second)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if s.Endpoint() != ep {
		t.Errorf("Endpoint() = %v, want %v", s.Endpoint(), ep)
	}

	resp, err := s.Request(context.Background(), domain.FormatCompact, []byte("ping"))
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if string(resp) != "re:ping" {
		t.Errorf("Request() = %q, want %q", resp, "re:ping")
	}
}

func TestSession_SingleUse(t *testing.T) {
	ep := responder(t, echo)

	s, err := Open(context.Background(), ep, time.Second)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Request(context.Background(), domain.FormatJSON, []byte("{}")); err != nil {
		t.Fatalf("first Request() error = %v", err)
	}
	if _, err := s.Request(context.Background(), domain.FormatJSON, []byte("{}")); !errors.Is(err, domain.ErrTransport) {
		t.Errorf("second Request() error = %v, want ErrTransport", err)
	}
}

func TestSession_RequestAfterClose(t *testing.T) {
	ep := responder(t, echo)

	s, err := Open(context.Background(), ep, time.Second)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := s.Request(context.Background(), domain.FormatCompact, []byte("x")); !errors.Is(err, domain.ErrTransport) {
		t.Errorf("Request() after Close error = %v, want ErrTransport", err)
	}
}

func TestOpen_NothingListening(t *testing.T) {
	ep := domain.ServiceEndpoint{Address: SchemeIPC + filepath.Join(t.TempDir(), "absent.sock")}

	_, err := Open(context.Background(), ep, time.Second)
	if !errors.Is(err, domain.ErrTransport) {
		t.Errorf("Open() error = %v, want ErrTransport", err)
	}
}

func TestOpen_BadAddress(t *testing.T) {
	_, err := Open(context.Background(), domain.ServiceEndpoint{Address: "gopher://x"}, time.Second)
	if !errors.Is(err, domain.ErrResolution) {
		t.Errorf("Open() error = %v, want ErrResolution", err)
	}
}

func TestSession_Timeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	ep := responder(t, func(conn net.Conn) {
		_, _, _ = protocol.ReadFrame(conn)
		<-release
	})

	start := time.Now()
	_, err := Exchange(context.Background(), ep, 100*time.Millisecond, domain.FormatCompact, []byte("x"))
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("Exchange() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

// Time spent between Open and Send counts against the same timeout.
func TestSession_SharedDeadline(t *testing.T) {
	ep := responder(t, func(conn net.Conn) {
		format, payload, err := protocol.ReadFrame(conn)
		if err != nil {
			return
		}
		time.Sleep(250 * time.Millisecond)
		_ = protocol.WriteFrame(conn, format, payload)
	})

	start := time.Now()
	s, err := Open(context.Background(), ep, 300*time.Millisecond)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	time.Sleep(200 * time.Millisecond)

	_, err = s.Request(context.Background(), domain.FormatCompact, []byte("x"))
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("Request() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 440*time.Millisecond {
		t.Errorf("session ran %v, want it bounded by one 300ms timeout", elapsed)
	}
}

func TestSession_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	ep := responder(t, func(conn net.Conn) {
		<-release
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Exchange(ctx, ep, 10*time.Second, domain.FormatCompact, []byte("x"))
	if !errors.Is(err, domain.ErrTimeout) {
		t.Errorf("Exchange() error = %v, want ErrTimeout", err)
	}
}

func TestSession_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	ep := responder(t, func(conn net.Conn) {
		<-release
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := Exchange(ctx, ep, 10*time.Second, domain.FormatCompact, []byte("x"))
	if !errors.Is(err, domain.ErrTransport) {
		t.Errorf("Exchange() error = %v, want ErrTransport", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Exchange() error = %v, want cause context.Canceled", err)
	}
}

func TestSession_PeerClosed(t *testing.T) {
	ep := responder(t, func(conn net.Conn) {
		_, _, _ = protocol.ReadFrame(conn)
	})

	_, err := Exchange(context.Background(), ep, time.Second, domain.FormatCompact, []byte("x"))
	if !errors.Is(err, domain.ErrTransport) {
		t.Errorf("Exchange() error = %v, want ErrTransport", err)
	}
}

func TestSession_FormatMismatch(t *testing.T) {
	ep := responder(t, func(conn net.Conn) {
		_, _, err := protocol.ReadFrame(conn)
		if err != nil {
			return
		}
		_ = protocol.WriteFrame(conn, domain.FormatJSON, []byte("{}"))
	})

	_, err := Exchange(context.Background(), ep, time.Second, domain.FormatCompact, []byte("x"))
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Errorf("Exchange() error = %v, want ErrSchemaMismatch", err)
	}
}

func TestSession_MalformedFrame(t *testing.T) {
	ep := responder(t, func(conn net.Conn) {
		_, _, err := protocol.ReadFrame(conn)
		if err != nil {
			return
		}
		_, _ = conn.Write([]byte{0, 0, 0, 0, 1})
	})

	_, err := Exchange(context.Background(), ep, time.Second, domain.FormatCompact, []byte("x"))
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Errorf("Exchange() error = %v, want ErrSchemaMismatch", err)
	}
}

func TestExchange_TCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		echo(conn)
	}()

	ep := domain.ServiceEndpoint{Address: SchemeTCP + ln.Addr().String()}
	resp, err := Exchange(context.Background(), ep, time.Second, domain.FormatJSON, []byte("hi"))
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if string(resp) != "re:hi" {
		t.Errorf("Exchange() = %q, want %q", resp, "re:hi")
	}
}

func TestSession_SendReceive(t *testing.T) {
	ep := responder(t, echo)

	s, err := Open(context.Background(), ep, time.Second)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Receive(context.Background()); !errors.Is(err, domain.ErrTransport) {
		t.Errorf("Receive() before Send error = %v, want ErrTransport", err)
	}

	if err := s.Send(context.Background(), domain.FormatJSON, []byte("a")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := s.Send(context.Background(), domain.FormatJSON, []byte("b")); !errors.Is(err, domain.ErrTransport) {
		t.Errorf("second Send() error = %v, want ErrTransport", err)
	}

	resp, err := s.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if string(resp) != "re:a" {
		t.Errorf("Receive() = %q, want %q", resp, "re:a")
	}
	if _, err := s.Receive(context.Background()); !errors.Is(err, domain.ErrTransport) {
		t.Errorf("second Receive() error = %v, want ErrTransport", err)
	}
}
