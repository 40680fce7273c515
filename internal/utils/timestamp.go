package utils

import (
	"fmt"
	"strings"
	"time"
)

// ParseAPITime parses a timestamp received from an upstream system. Upstream
// timestamps are UTC but do not always carry an explicit zone designator;
// a bare value is treated as UTC by appending "Z" before parsing. Every
// ingestion boundary must go through this function so that cross-record
// time comparisons stay consistent.
func ParseAPITime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if !hasZoneDesignator(trimmed) {
		trimmed += "Z"
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05Z07:00"} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// ParseOptionalAPITime parses a nullable timestamp field, returning nil for
// empty input and an error only for present-but-malformed values.
func ParseOptionalAPITime(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}

	parsed, err := ParseAPITime(*raw)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}

func hasZoneDesignator(value string) bool {
	if strings.HasSuffix(value, "Z") || strings.HasSuffix(value, "z") {
		return true
	}

	// A +hh:mm or -hh:mm offset can only follow the time component, so look
	// for a sign after the "T" separator.
	idx := strings.IndexAny(value, "Tt")
	if idx < 0 {
		return false
	}

	rest := value[idx+1:]
	return strings.ContainsAny(rest, "+-")
}
