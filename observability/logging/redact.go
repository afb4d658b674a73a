package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue is the placeholder emitted in place of sensitive log fields.
const RedactedValue = "[REDACTED]"

var redactionAllowlist = map[string]struct{}{
	"service":   {},
	"env":       {},
	"message":   {},
	"severity":  {},
	"timestamp": {},
	"error":     {},
	"reason":    {},
	"operation": {},
	"outcome":   {},
	"address":   {},
	"tx":        {},
}

// IsAllowlisted reports whether the key may be logged verbatim.
func IsAllowlisted(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	_, ok := redactionAllowlist[normalized]
	return ok
}

// MaskUserID keeps a short identifying prefix of the user id so operators can
// correlate log lines without the full identity appearing in logs.
func MaskUserID(id string) string {
	trimmed := strings.TrimSpace(id)
	if len(trimmed) <= 4 {
		return RedactedValue
	}
	return trimmed[:4] + "…"
}

// MaskField returns a slog.Attr that redacts the value unless the key is
// explicitly allowlisted.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || IsAllowlisted(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}
