package applog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is the severity of a log message. Lower numeric values have higher
// priority; a message at level L is emitted iff L <= the active threshold.
type Level int

const (
	LevelFatal Level = 1
	LevelError Level = 2
	LevelWarn  Level = 4
	LevelInfo  Level = 6
	LevelDebug Level = 8
	LevelTrace Level = 9
)

// DefaultLevel is the threshold used when no valid level is configured.
const DefaultLevel = LevelDebug

// The gaps between the level values (3, 5, 7) are reserved slots for
// intermediate levels and are intentionally unused.

// String returns the uppercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelFatal:
		return "FATAL"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name (case-insensitive) to its Level. The second
// return value reports whether the name was recognised.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "FATAL":
		return LevelFatal, true
	case "ERROR":
		return LevelError, true
	case "WARN":
		return LevelWarn, true
	case "INFO":
		return LevelInfo, true
	case "DEBUG":
		return LevelDebug, true
	case "TRACE":
		return LevelTrace, true
	default:
		return 0, false
	}
}

// slogLevel maps a Level onto the slog severity scale, which the line
// handler uses for gating. slog severities grow with priority, so the
// mapping inverts the ordering.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelFatal:
		return slog.LevelError + 4
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	case LevelTrace:
		return slog.LevelDebug - 4
	default:
		return slog.LevelInfo
	}
}

// levelName maps a slog severity back to the printed level name.
func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError+4:
		return "FATAL"
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	case l >= slog.LevelDebug:
		return "DEBUG"
	default:
		return "TRACE"
	}
}

// ResolveThreshold picks the active threshold with the priority: a non-empty
// environment value naming a valid level, then a valid explicit override,
// then DefaultLevel. Invalid names are never fatal; each produces a
// recoverable warning message and resolution falls through to the next tier.
func ResolveThreshold(envValue, explicit string) (Level, []string) {
	var warnings []string

	if envValue != "" {
		if level, ok := ParseLevel(envValue); ok {
			return level, nil
		}
		warnings = append(warnings, fmt.Sprintf("unknown log level %q in environment, trying next source", envValue))
	}

	if explicit != "" {
		if level, ok := ParseLevel(explicit); ok {
			return level, warnings
		}
		warnings = append(warnings, fmt.Sprintf("unknown log level %q requested, falling back to %s", explicit, DefaultLevel))
	}

	return DefaultLevel, warnings
}
