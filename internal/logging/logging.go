// Package logging provides structured logging for the host, wire server,
// and FUSE bridge, generalizing the teacher's log_service.LogService
// interface (Debug/Info/Warn/Error over a structured Event) onto a
// zerolog backend, following BrettBedarf-webfs's InitializeLogger/
// GetLogger split for the same role.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level names, kept as the teacher's log_service package spells them.
const (
	DebugLevel = "DEBUG"
	InfoLevel  = "INFO"
	WarnLevel  = "WARN"
	ErrorLevel = "ERROR"
)

// Output formats. cmd/fsserver runs as a long-lived daemon whose logs feed
// log aggregation, so it gets the JSON writer; cmd/fscli and cmd/fsmount
// are run interactively and get the console-pretty writer.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

// Event is one structured log record.
type Event struct {
	Timestamp time.Time
	Component string
	Message   string
	Metadata  map[string]any
}

// Logger is the structured-logging contract the rest of the module
// depends on, so that internal/store, internal/wire, and
// internal/fusebridge never import zerolog directly.
type Logger interface {
	Debug(Event)
	Info(Event)
	Warn(Event)
	Error(Event)
}

type zerologLogger struct {
	log zerolog.Logger
}

// Init configures the global zerolog logger. Call once at process
// startup before calling New. format selects ConsoleFormat's
// human-readable writer or JSONFormat's line-delimited JSON writer; an
// unrecognized format falls back to ConsoleFormat.
func Init(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLevel(level))

	if format == JSONFormat {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// New returns a Logger tagged with component, backed by the global
// zerolog logger configured by Init.
func New(component string) Logger {
	return &zerologLogger{log: log.With().Str("component", component).Logger()}
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case InfoLevel:
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zerologLogger) emit(lvl zerolog.Level, e Event) {
	ev := l.log.WithLevel(lvl)
	for k, v := range e.Metadata {
		ev = ev.Interface(k, v)
	}
	ev.Msg(e.Message)
}

func (l *zerologLogger) Debug(e Event) { l.emit(zerolog.DebugLevel, e) }
func (l *zerologLogger) Info(e Event)  { l.emit(zerolog.InfoLevel, e) }
func (l *zerologLogger) Warn(e Event)  { l.emit(zerolog.WarnLevel, e) }
func (l *zerologLogger) Error(e Event) { l.emit(zerolog.ErrorLevel, e) }
