package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInvalidConfig is wrapped by every LoggerConfig validation failure
var ErrInvalidConfig = errors.New("invalid logger config")

// LogFormat selects the logrus formatter
type LogFormat string

const (
	FormatJSON LogFormat = "json"
	FormatText LogFormat = "text"
)

// LoggerConfig configura el logger base
type LoggerConfig struct {
	Level       LogLevel
	Format      LogFormat
	Output      io.Writer
	Service     string
	Version     string
	Environment string
	AddSource   bool
}

// DefaultConfig: info, JSON a stdout
func DefaultConfig() *LoggerConfig {
	return NewConfig("coin-dashboard-service", "dev", "development")
}

// NewConfig crea una configuración con los metadatos del servicio
func NewConfig(service, version, environment string) *LoggerConfig {
	return &LoggerConfig{
		Level:       LevelInfo,
		Format:      FormatJSON,
		Output:      os.Stdout,
		Service:     service,
		Version:     version,
		Environment: environment,
	}
}

func (c *LoggerConfig) WithLevel(level LogLevel) *LoggerConfig {
	c.Level = level
	return c
}

func (c *LoggerConfig) WithFormat(format LogFormat) *LoggerConfig {
	c.Format = format
	return c
}

func (c *LoggerConfig) WithOutput(output io.Writer) *LoggerConfig {
	c.Output = output
	return c
}

// WithSource agrega archivo:línea del caller a cada entrada
func (c *LoggerConfig) WithSource(addSource bool) *LoggerConfig {
	c.AddSource = addSource
	return c
}

// Validate checks the config before a logger is built from it
func (c *LoggerConfig) Validate() error {
	switch c.Level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
	default:
		return fmt.Errorf("%w: invalid log level %q", ErrInvalidConfig, c.Level)
	}

	switch c.Format {
	case FormatJSON, FormatText:
	default:
		return fmt.Errorf("%w: invalid log format %q", ErrInvalidConfig, c.Format)
	}

	if c.Output == nil {
		return fmt.Errorf("%w: output writer cannot be nil", ErrInvalidConfig)
	}
	if c.Service == "" {
		return fmt.Errorf("%w: service name cannot be empty", ErrInvalidConfig)
	}
	return nil
}

// LogLevelFromString parses logging.level; unknown values fall back to info
func LogLevelFromString(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// LogFormatFromString parses logging.format; unknown values fall back to JSON
func LogFormatFromString(format string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(format), string(FormatText)) {
		return FormatText
	}
	return FormatJSON
}
