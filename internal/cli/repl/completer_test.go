package repl

import (
	"reflect"
	"testing"
)

func TestCompleter(t *testing.T) {
	c := NewCompleter([]string{"store", "erase", "prefix-manager", "prefix-allocator"})

	tests := []struct {
		prefix string
		want   []string
	}{
		{"prefix", []string{"prefix-allocator", "prefix-manager"}},
		{"e", []string{"erase", "exit"}},
		{"h", []string{"help", "history"}},
		{"zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestCompleter_Known(t *testing.T) {
	c := NewCompleter([]string{"store", "erase"})

	for _, name := range []string{"store", "erase", "exit", "quit"} {
		if !c.Known(name) {
			t.Errorf("Known(%q) = false", name)
		}
	}
	for _, name := range []string{"stor", "", "link-monitor"} {
		if c.Known(name) {
			t.Errorf("Known(%q) = true", name)
		}
	}
}
