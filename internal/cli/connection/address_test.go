package connection

import (
	"errors"
	"testing"

	"github.com/yndnr/confstore-go/internal/core/domain"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		input   string
		network string
		addr    string
	}{
		{"ipc:///tmp/config_store_cmd_node1", "unix", "/tmp/config_store_cmd_node1"},
		{"unix:///run/confstore.sock", "unix", "/run/confstore.sock"},
		{"tcp://10.0.0.1:60006", "tcp", "10.0.0.1:60006"},
		{"tcp://[::1]:60006", "tcp", "[::1]:60006"},
		{"node1.example:60006", "tcp", "node1.example:60006"},
		{"  localhost:1  ", "tcp", "localhost:1"},
		{"/ip4/127.0.0.1/tcp/60006", "tcp", "127.0.0.1:60006"},
		{"/ip6/::1/tcp/60006", "tcp", "[::1]:60006"},
		{"/dns4/node1.example/tcp/60006", "tcp", "node1.example:60006"},
		{"/unix/tmp/confstore.sock", "unix", "/tmp/confstore.sock"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if err != nil {
				t.Fatalf("ParseAddress(%q) error = %v", tt.input, err)
			}
			if got.Network != tt.network || got.Addr != tt.addr {
				t.Errorf("ParseAddress(%q) = %+v, want %s %s", tt.input, got, tt.network, tt.addr)
			}
		})
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"ipc://",
		"tcp://no-port",
		"tcp://host:",
		"http://example.com:80",
		"just-a-host",
		"/ip4/999.0.0.1/tcp/1",
		"/ip4/127.0.0.1/udp/53",
		"/dns4/node1.example",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAddress(in)
			if !errors.Is(err, domain.ErrResolution) {
				t.Errorf("ParseAddress(%q) error = %v, want ErrResolution", in, err)
			}
		})
	}
}

func TestAddress_String(t *testing.T) {
	a := Address{Network: "unix", Addr: "/tmp/x"}
	if got := a.String(); got != "unix:///tmp/x" {
		t.Errorf("String() = %q", got)
	}
}
