package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	tests := []struct {
		name  string
		value string
	}{
		{"Version", info.Version},
		{"Commit", info.Commit},
		{"BuildTime", info.BuildTime},
		{"GoVersion", info.GoVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Errorf("%s field should not be empty", tt.name)
			}
		})
	}
}

func TestGet_InjectedCommitWins(t *testing.T) {
	orig := Commit
	t.Cleanup(func() { Commit = orig })

	Commit = "abc1234"
	if got := Get().Commit; got != "abc1234" {
		t.Errorf("Commit = %q, want %q", got, "abc1234")
	}
}

func TestString(t *testing.T) {
	s := String()
	info := Get()

	expected := info.Version + " (" + info.Commit + ") built at " + info.BuildTime + " with " + info.GoVersion
	if s != expected {
		t.Errorf("String() = %q, want %q", s, expected)
	}
	if !strings.Contains(s, runtime.Version()) {
		t.Errorf("String() = %q, want it to contain %q", s, runtime.Version())
	}
}
