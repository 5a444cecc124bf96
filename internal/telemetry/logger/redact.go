package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Attribute names whose values are configuration payloads. Only the size of
// the payload is logged.
var payloadKeyPatterns = []string{
	"value",
	"blob",
	"payload",
}

// Attribute names whose values are secrets.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
	"bearer",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive replaces payload and secret attributes before they reach
// the handler.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	if IsSensitiveKey(a.Key) {
		if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
			return a
		}
		return slog.String(a.Key, redactedValue)
	}

	if isPayloadKey(a.Key) {
		switch a.Value.Kind() {
		case slog.KindString:
			return slog.String(a.Key, SizeOf(a.Value.String()))
		case slog.KindAny:
			if b, ok := a.Value.Any().([]byte); ok {
				return slog.String(a.Key, SizeOf(b))
			}
			return slog.String(a.Key, redactedValue)
		}
	}

	return a
}

// SizeOf renders a payload as its length only.
func SizeOf[T ~string | ~[]byte](payload T) string {
	return fmt.Sprintf("<%d bytes>", len(payload))
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	return containsAny(key, sensitiveKeyPatterns)
}

func isPayloadKey(key string) bool {
	return containsAny(key, payloadKeyPatterns)
}

func containsAny(key string, patterns []string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range patterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
