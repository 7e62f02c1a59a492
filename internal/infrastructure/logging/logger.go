package logging

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var levels = map[LogLevel]logrus.Level{
	LevelDebug: logrus.DebugLevel,
	LevelInfo:  logrus.InfoLevel,
	LevelWarn:  logrus.WarnLevel,
	LevelError: logrus.ErrorLevel,
}

// StructuredLogger implementa Logger sobre logrus.
// Cada entrada lleva service/version/environment y, si hay request en el contexto,
// request_id y la duración transcurrida.
type StructuredLogger struct {
	logger *logrus.Logger
	base   *logrus.Entry
}

// NewStructuredLogger builds a logger from a validated config
func NewStructuredLogger(config *LoggerConfig) (*StructuredLogger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	l := logrus.New()
	l.SetOutput(config.Output)
	l.SetLevel(levels[config.Level])
	l.SetReportCaller(config.AddSource)
	if config.Format == FormatText {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: FieldTimestamp,
				logrus.FieldKeyMsg:  FieldMessage,
			},
		})
	}

	return &StructuredLogger{
		logger: l,
		base: l.WithFields(logrus.Fields{
			FieldService:     config.Service,
			FieldVersion:     config.Version,
			FieldEnvironment: config.Environment,
		}),
	}, nil
}

func (sl *StructuredLogger) entry(ctx context.Context, fields Fields) *logrus.Entry {
	e := sl.base
	meta := metaFrom(ctx)
	if meta.id != "" {
		e = e.WithField(FieldRequestID, meta.id)
	}
	if !meta.startTime.IsZero() {
		e = e.WithField(FieldDuration, msSince(meta.startTime))
	}
	if len(fields) > 0 {
		e = e.WithFields(logrus.Fields(fields))
	}
	return e
}

func (sl *StructuredLogger) log(ctx context.Context, level LogLevel, message string, fields Fields) {
	lvl, ok := levels[level]
	if !ok {
		lvl = logrus.InfoLevel
	}
	if !sl.logger.IsLevelEnabled(lvl) {
		return
	}
	sl.entry(ctx, fields).Log(lvl, message)
}

func (sl *StructuredLogger) Debug(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelDebug, message, fields)
}

func (sl *StructuredLogger) Info(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelInfo, message, fields)
}

func (sl *StructuredLogger) Warn(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelWarn, message, fields)
}

func (sl *StructuredLogger) Error(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelError, message, fields)
}

func (sl *StructuredLogger) WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelWarn, message, withError(fields, err))
}

func (sl *StructuredLogger) ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelError, message, withError(fields, err))
}

// SetLevel cambia el nivel en caliente
func (sl *StructuredLogger) SetLevel(level LogLevel) {
	if lvl, ok := levels[level]; ok {
		sl.logger.SetLevel(lvl)
	}
}

func (sl *StructuredLogger) GetLevel() LogLevel {
	current := sl.logger.GetLevel()
	for level, lvl := range levels {
		if lvl == current {
			return level
		}
	}
	return LogLevel(fmt.Sprint(current))
}
