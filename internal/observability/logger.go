// Package observability provides the structured logger and run metrics.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggingConfig contains logger configuration options.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string
	// Format is the output format (json, console).
	Format string
	// Output is the output destination (stdout, stderr).
	Output string
	// AddSource adds source file and line number to log entries.
	AddSource bool
	// Writer overrides Output when set.
	Writer io.Writer
}

// DefaultLoggingConfig returns the CLI defaults: console lines on stderr so
// reports written to stdout stay clean.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}

// NewLogger creates a new zerolog logger based on configuration.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	output := cfg.Writer
	if output == nil {
		switch strings.ToLower(cfg.Output) {
		case "stdout":
			output = os.Stdout
		default:
			output = os.Stderr
		}
	}

	if strings.ToLower(cfg.Format) == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.Writer != nil,
		}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if cfg.AddSource {
		ctx = ctx.Caller()
	}
	return ctx.Logger().Level(parseLevel(cfg.Level))
}

// parseLevel converts a string log level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithRunContext adds the run identifier and oracle to a logger.
func WithRunContext(logger zerolog.Logger, runID, oracle string) zerolog.Logger {
	return logger.With().
		Str("run_id", runID).
		Str("oracle", oracle).
		Logger()
}

// WithStage adds the pipeline stage to a logger.
func WithStage(logger zerolog.Logger, stage string) zerolog.Logger {
	return logger.With().Str("stage", stage).Logger()
}

// WithCluster adds cluster fields to a logger.
func WithCluster(logger zerolog.Logger, clusterID, size int) zerolog.Logger {
	return logger.With().
		Int("cluster_id", clusterID).
		Int("size", size).
		Logger()
}
