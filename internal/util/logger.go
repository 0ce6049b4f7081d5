package util

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger = zerolog.Logger

// LogLevel represents available log levels
type LogLevel = int

// Log levels
const (
	TraceLevel LogLevel = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Verbosity bounds accepted on the command line and in config files.
const (
	MinVerbose = 1
	MaxVerbose = 5
)

// VerboseToLevel maps a 1 (error) .. 5 (trace) verbosity to a LogLevel,
// clamping out of range values.
func VerboseToLevel(verbose int) LogLevel {
	verbose = max(MinVerbose, min(verbose, MaxVerbose))
	lvls := [MaxVerbose]LogLevel{ErrorLevel, WarnLevel, InfoLevel, DebugLevel, TraceLevel}
	return lvls[verbose-1]
}

// InitializeLogger sets up the global logger on stderr so log lines never mix
// with command output on stdout.
func InitializeLogger(level LogLevel) {
	InitializeLoggerTo(os.Stderr, level)
}

// InitializeLoggerTo is InitializeLogger with an explicit destination.
func InitializeLoggerTo(out io.Writer, level LogLevel) {
	// Set time format to ISO8601
	zerolog.TimeFieldFormat = time.RFC3339

	switch level {
	case TraceLevel:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case DebugLevel:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case InfoLevel:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case WarnLevel:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case ErrorLevel:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}

	ctx := zerolog.New(output).With().Timestamp()
	if level == TraceLevel {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	log.Debug().Msg("Logger initialized")
}

// GetLogger returns a configured logger for a specific component
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
