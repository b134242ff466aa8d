package transform

import (
	"strings"
	"time"
)

// LegacyDateLayout is the locale format used by the legacy store for every date field.
const LegacyDateLayout = "02/01/2006, 15:04"

const isoLayout = "2006-01-02T15:04:05.000Z"

var legacyDateLayouts = []string{
	LegacyDateLayout,
	"02/01/2006 15:04",
	"02/01/2006,15:04",
	"02/01/2006",
	time.RFC3339,
}

// ParseLegacyDate reads a legacy date string as UTC. Empty or unrecognised input is Defaulted to nil.
func ParseLegacyDate(s string) ParseResult[*time.Time] {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return defaulted[*time.Time](s)
	}
	for _, layout := range legacyDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t = t.UTC()
			return parsed(&t, s)
		}
	}
	return defaulted[*time.Time](s)
}

// FormatLegacyDate renders t in the legacy locale format. A nil time gives "".
func FormatLegacyDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(LegacyDateLayout)
}

// FormatISO renders t as a UTC timestamp with millisecond precision, e.g. 2024-03-14T15:30:00.000Z.
func FormatISO(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(isoLayout)
}
