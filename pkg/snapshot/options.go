package snapshot

import (
	"strconv"
	"strings"
)

// Wrapper argument keys understood by ParseArgs. They ride alongside the
// real tool arguments on the generic argument channel and are stripped
// before the tool sees them.
const (
	ArgLevel        = "_snapshot_level"
	ArgCompact      = "_compact"
	ArgDelta        = "_delta"
	ArgMaxChars     = "_max_chars"
	ArgContextLines = "_context_lines"
	ArgKeywords     = "_keywords"
)

// ParseArgs extracts compaction options from a generic tool-argument map and
// removes the wrapper keys from it. Malformed values never fail the call;
// they fall back to the documented defaults. Unrecognized wrapper keys that
// older callers still send (_context_lines, _keywords) are stripped and
// ignored.
func ParseArgs(args map[string]any) Options {
	if args == nil {
		return Options{Level: 1, Delta: DeltaAuto}.normalized()
	}

	levelRaw, hasLevel := pop(args, ArgLevel)
	compactRaw, hasCompact := pop(args, ArgCompact)
	deltaRaw, hasDelta := pop(args, ArgDelta)
	maxCharsRaw, hasMaxChars := pop(args, ArgMaxChars)
	pop(args, ArgContextLines)
	pop(args, ArgKeywords)

	compact := true
	if hasCompact {
		if b, ok := asBool(compactRaw); ok {
			compact = b
		}
	}

	level := 1
	if !compact {
		level = 2
	}
	if hasLevel {
		if n, ok := asInt(levelRaw); ok {
			level = n
		}
	}

	maxChars := 0 // zero lets normalization pick the per-level default
	if hasMaxChars {
		if n, ok := asInt(maxCharsRaw); ok {
			maxChars = n
		} else {
			maxChars = DefaultMaxCharsSection
		}
	}

	delta := DeltaAuto
	if hasDelta {
		delta = deltaFromValue(deltaRaw)
	}

	return Options{Level: level, MaxChars: maxChars, Delta: delta}.normalized()
}

// deltaFromValue maps a caller-supplied value to a DeltaMode. Booleans toggle
// between auto and off; the explicit mode strings override.
func deltaFromValue(v any) DeltaMode {
	if s, ok := v.(string); ok {
		switch DeltaMode(strings.ToLower(strings.TrimSpace(s))) {
		case DeltaOff:
			return DeltaOff
		case DeltaOn:
			return DeltaOn
		case DeltaAuto:
			return DeltaAuto
		}
	}
	if b, ok := asBool(v); ok && !b {
		return DeltaOff
	}
	return DeltaAuto
}

func pop(args map[string]any, key string) (any, bool) {
	v, ok := args[key]
	if ok {
		delete(args, key)
	}
	return v, ok
}

// asInt accepts the numeric shapes a JSON/XML argument channel produces.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed, true
		}
	case float64:
		return b != 0, true
	case int:
		return b != 0, true
	}
	return false, false
}
