package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log stays silent until Init is called, which keeps tests quiet.
var Log = zerolog.Nop()

// Init initializes the global logger with the specified level.
// Valid levels: debug, info, warn, error. A nil writer means stderr, since
// stdout carries the headless and MCP protocols.
func Init(level string, w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if w == nil {
		w = os.Stderr
	}
	Log = zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// Module returns a logger with a module field for scoped logging.
func Module(name string) zerolog.Logger {
	return Log.With().Str("module", name).Logger()
}

// Session tags a module logger with the hosting session id.
func Session(name, sessionID string) zerolog.Logger {
	return Log.With().Str("module", name).Str("session", sessionID).Logger()
}
