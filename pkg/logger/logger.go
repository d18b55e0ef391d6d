// Package logger builds the structured zerolog loggers used by the CLI and
// the HTTP server, and adapts them to the engine's printf-style Logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration
type Config struct {
	Level  string    // debug, info, warn, error
	Pretty bool      // Enable pretty console output
	Out    io.Writer // defaults to os.Stderr
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New creates a new structured logger
func New(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stderr
	if cfg.Out != nil {
		output = cfg.Out
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// SetGlobalLogger sets the package-level logger
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}

// Component returns a sub-logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// EngineLogger adapts a zerolog.Logger to the projection engine's
// Debugf/Infof/Warnf/Errorf interface.
type EngineLogger struct {
	log zerolog.Logger
}

// NewEngineLogger wraps l for use by the engine.
func NewEngineLogger(l zerolog.Logger) *EngineLogger {
	return &EngineLogger{log: Component(l, "engine")}
}

func (e *EngineLogger) Debugf(format string, args ...interface{}) {
	e.log.Debug().Msg(fmt.Sprintf(format, args...))
}

func (e *EngineLogger) Infof(format string, args ...interface{}) {
	e.log.Info().Msg(fmt.Sprintf(format, args...))
}

func (e *EngineLogger) Warnf(format string, args ...interface{}) {
	e.log.Warn().Msg(fmt.Sprintf(format, args...))
}

func (e *EngineLogger) Errorf(format string, args ...interface{}) {
	e.log.Error().Msg(fmt.Sprintf(format, args...))
}
