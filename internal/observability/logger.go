// Package observability provides structured logging for the extraction core.
package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with extraction-core specific context helpers.
type Logger struct {
	zl zerolog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level   string
	Format  string // "json" or "console"
	Output  io.Writer
	Service string
}

// New creates a new Logger with the given configuration.
func New(cfg Config) *Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	var zl zerolog.Logger
	if cfg.Format == "console" {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339})
	} else {
		zl = zerolog.New(output)
	}

	service := cfg.Service
	if service == "" {
		service = "menuextract"
	}

	zl = zl.With().Timestamp().Str("service", service).Logger()
	return &Logger{zl: zl}
}

// Default returns a logger with development-friendly settings.
func Default() *Logger {
	return New(Config{Level: "info", Format: "console", Service: "menuextract"})
}

// Nop returns a logger that discards all output, for use in tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithJob returns a logger tagged with a document job ID.
func (l *Logger) WithJob(jobID string) *Logger {
	return &Logger{zl: l.zl.With().Str("job_id", jobID).Logger()}
}

// WithPage returns a logger tagged with a page index.
func (l *Logger) WithPage(page int) *Logger {
	return &Logger{zl: l.zl.With().Int("page", page).Logger()}
}

// WithStage returns a logger tagged with a pipeline stage name.
func (l *Logger) WithStage(stage string) *Logger {
	return &Logger{zl: l.zl.With().Str("stage", stage).Logger()}
}

func (l *Logger) Debug() *Event { return &Event{e: l.zl.Debug()} }
func (l *Logger) Info() *Event  { return &Event{e: l.zl.Info()} }
func (l *Logger) Warn() *Event  { return &Event{e: l.zl.Warn()} }
func (l *Logger) Error() *Event { return &Event{e: l.zl.Error()} }

// Event is a log event under construction.
type Event struct {
	e *zerolog.Event
}

func (ev *Event) Str(key, val string) *Event {
	ev.e = ev.e.Str(key, val)
	return ev
}

func (ev *Event) Int(key string, val int) *Event {
	ev.e = ev.e.Int(key, val)
	return ev
}

func (ev *Event) Float64(key string, val float64) *Event {
	ev.e = ev.e.Float64(key, val)
	return ev
}

func (ev *Event) Dur(key string, val time.Duration) *Event {
	ev.e = ev.e.Dur(key, val)
	return ev
}

func (ev *Event) Err(err error) *Event {
	ev.e = ev.e.Err(err)
	return ev
}

func (ev *Event) Msg(msg string) { ev.e.Msg(msg) }

func (ev *Event) Msgf(format string, args ...interface{}) { ev.e.Msgf(format, args...) }

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}
