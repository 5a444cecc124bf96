package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind identifies a request kind and the response kind that answers it.
type Kind uint8

const (
	KindUnspecified Kind = iota
	KindDumpPrefixAllocator
	KindDumpLinkMonitor
	KindDumpPrefixManager
	KindErase
	KindStore
	// KindIdentity asks a link monitor for its node name. It is used by the
	// endpoint resolver and never by the Config Store itself.
	KindIdentity
)

var kindNames = map[Kind]string{
	KindUnspecified:         "unspecified",
	KindDumpPrefixAllocator: "dump-prefix-allocator",
	KindDumpLinkMonitor:     "dump-link-monitor",
	KindDumpPrefixManager:   "dump-prefix-manager",
	KindErase:               "erase",
	KindStore:               "store",
	KindIdentity:            "identity",
}

// String returns the command-style name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is a known, specified kind.
func (k Kind) Valid() bool {
	return k > KindUnspecified && k <= KindIdentity
}

// IsDump reports whether k is one of the read-only dump kinds.
func (k Kind) IsDump() bool {
	return k == KindDumpPrefixAllocator || k == KindDumpLinkMonitor || k == KindDumpPrefixManager
}

// ParseKind parses a command-style kind name.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if k != KindUnspecified && name == s {
			return k, nil
		}
	}
	return KindUnspecified, ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown request kind %q", s))
}

// Well-known Config Store keys holding module configs.
const (
	PrefixAllocatorKey = "prefix-allocator-config"
	LinkMonitorKey     = "link-monitor-config"
	PrefixManagerKey   = "prefix-manager-config"
)

// Schema discriminators of the config blobs stored under the well-known keys.
const (
	PrefixAllocatorSchema = "openr.AllocPrefix"
	LinkMonitorSchema     = "openr.LinkMonitorConfig"
	PrefixManagerSchema   = "openr.PrefixDatabase"
)

// DumpKey returns the well-known key and schema read by a dump kind.
func DumpKey(k Kind) (key, schema string, ok bool) {
	switch k {
	case KindDumpPrefixAllocator:
		return PrefixAllocatorKey, PrefixAllocatorSchema, true
	case KindDumpLinkMonitor:
		return LinkMonitorKey, LinkMonitorSchema, true
	case KindDumpPrefixManager:
		return PrefixManagerKey, PrefixManagerSchema, true
	}
	return "", "", false
}

// ConfigRequest is a closed set of requests the client can send.
// Each variant carries only the fields its operation needs.
type ConfigRequest interface {
	Kind() Kind
	isConfigRequest()
}

// DumpPrefixAllocator reads the prefix allocator config.
type DumpPrefixAllocator struct{}

// DumpLinkMonitor reads the link monitor config.
type DumpLinkMonitor struct{}

// DumpPrefixManager reads the prefix manager config.
type DumpPrefixManager struct{}

// Erase removes a key.
type Erase struct {
	Key string
}

// Store writes a value under a key.
type Store struct {
	Key   string
	Value []byte
}

// Identity asks for the node name of a link monitor.
type Identity struct{}

func (DumpPrefixAllocator) Kind() Kind { return KindDumpPrefixAllocator }
func (DumpLinkMonitor) Kind() Kind     { return KindDumpLinkMonitor }
func (DumpPrefixManager) Kind() Kind   { return KindDumpPrefixManager }
func (Erase) Kind() Kind               { return KindErase }
func (Store) Kind() Kind               { return KindStore }
func (Identity) Kind() Kind            { return KindIdentity }

func (DumpPrefixAllocator) isConfigRequest() {}
func (DumpLinkMonitor) isConfigRequest()     {}
func (DumpPrefixManager) isConfigRequest()   {}
func (Erase) isConfigRequest()               {}
func (Store) isConfigRequest()               {}
func (Identity) isConfigRequest()            {}

// ValidateRequest checks caller-supplied fields of a request. Keys must be
// non-blank valid UTF-8 so that every wire format carries them unchanged.
func ValidateRequest(r ConfigRequest) error {
	switch req := r.(type) {
	case nil:
		return ErrInvalidArgument.WithDetails("request is nil")
	case Erase:
		return validateKey("erase", req.Key)
	case Store:
		return validateKey("store", req.Key)
	}
	return nil
}

func validateKey(op, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidArgument.WithDetails(op + ": key is required")
	}
	if !utf8.ValidString(key) {
		return ErrInvalidArgument.WithDetails(fmt.Sprintf("%s: key %q is not valid UTF-8", op, key))
	}
	return nil
}
