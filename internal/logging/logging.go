package logging

import (
	"io"
	"strings"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// NewLoggerWithWriter creates a logger writing JSON lines to w, at or above
// level.
func NewLoggerWithWriter(level logiface.Level, w io.Writer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}

// ParseLevel converts a string log level to a logiface.Level.
// Returns logiface.LevelInformational for unrecognized values.
func ParseLevel(s string) logiface.Level {
	switch strings.ToLower(s) {
	case "trace":
		return logiface.LevelTrace
	case "debug":
		return logiface.LevelDebug
	case "info":
		return logiface.LevelInformational
	case "warn", "warning":
		return logiface.LevelWarning
	case "error", "err":
		return logiface.LevelError
	case "off", "disabled":
		return logiface.LevelDisabled
	default:
		return logiface.LevelInformational
	}
}
