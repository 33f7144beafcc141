package infrastructure

import (
	"os"
	"strings"

	"github.com/architeacher/svc-stream-bridge/internal/config"
	"github.com/architeacher/svc-stream-bridge/pkg/stream"
	"github.com/rs/zerolog"
)

// Logger wraps zerolog to keep the rest of the codebase decoupled from the
// concrete logging library.
type Logger struct {
	zerolog.Logger
}

// New creates a configured logger writing to stdout.
func New(cfg config.LoggingConfig) Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if strings.EqualFold(cfg.Format, "console") {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return Logger{logger.Level(level).With().Timestamp().Logger()}
}

// StreamLogger adapts the application logger to the stream logging interface.
func StreamLogger(l Logger) stream.Logger {
	return streamLogger{l.Logger}
}

type streamLogger struct {
	logger zerolog.Logger
}

func (l streamLogger) Info() stream.LogEvent  { return streamLogEvent{l.logger.Info()} }
func (l streamLogger) Error() stream.LogEvent { return streamLogEvent{l.logger.Error()} }
func (l streamLogger) Debug() stream.LogEvent { return streamLogEvent{l.logger.Debug()} }

type streamLogEvent struct {
	event *zerolog.Event
}

func (e streamLogEvent) Msg(msg string) { e.event.Msg(msg) }

func (e streamLogEvent) Err(err error) stream.LogEvent {
	return streamLogEvent{e.event.Err(err)}
}

func (e streamLogEvent) Str(key, value string) stream.LogEvent {
	return streamLogEvent{e.event.Str(key, value)}
}

func (e streamLogEvent) Uint64(key string, value uint64) stream.LogEvent {
	return streamLogEvent{e.event.Uint64(key, value)}
}

func (e streamLogEvent) Int(key string, value int) stream.LogEvent {
	return streamLogEvent{e.event.Int(key, value)}
}
