package logger

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the logging interface.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// LogEntry represents a log entry for durable storage.
type LogEntry struct {
	Timestamp int64          `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Caller    string         `json:"caller,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// LogWriter is the interface for writing log entries to storage.
type LogWriter interface {
	Write(entry LogEntry) error
	Close() error
}

type zapLogger struct {
	logger *zap.Logger
	writer LogWriter
}

var (
	defaultLogger Logger
	defaultOnce   sync.Once
)

// New creates a new Logger with the given configuration.
func New(cfg Config, writer LogWriter) (Logger, error) {
	var cores []zapcore.Core

	level := parseLevel(cfg.Level)

	if cfg.EnableConsole {
		var encoder zapcore.Encoder
		if cfg.Environment == "production" {
			encoderConfig := zap.NewProductionEncoderConfig()
			encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			encoder = zapcore.NewJSONEncoder(encoderConfig)
		} else {
			encoderConfig := zap.NewDevelopmentEncoderConfig()
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
			encoder = zapcore.NewConsoleEncoder(encoderConfig)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}

	if cfg.EnableStorage && writer != nil {
		cores = append(cores, newWriterCore(writer, level))
	}

	core := zapcore.NewTee(cores...)

	return &zapLogger{
		logger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		writer: writer,
	}, nil
}

// Default returns the default logger, initializing it if needed.
func Default() Logger {
	defaultOnce.Do(func() {
		cfg := DefaultConfig()
		cfg.EnableStorage = false
		logger, _ := New(cfg, nil)
		defaultLogger = logger
	})
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(l Logger) {
	defaultLogger = l
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.logger.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.logger.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.logger.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.logger.Error(msg, fields...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{
		logger: l.logger.With(fields...),
		writer: l.writer,
	}
}

func (l *zapLogger) Sync() error {
	if l.writer != nil {
		l.writer.Close()
	}
	return l.logger.Sync()
}

type contextKey struct{}

// WithContext returns a context with the logger attached.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext retrieves the logger from context, or returns the default logger.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(contextKey{}).(Logger); ok {
		return l
	}
	return Default()
}

// writerCore is a zapcore.Core that forwards entries to a LogWriter.
type writerCore struct {
	zapcore.LevelEnabler
	writer LogWriter
	fields []Field
}

func newWriterCore(writer LogWriter, level zapcore.Level) zapcore.Core {
	return &writerCore{
		LevelEnabler: level,
		writer:       writer,
	}
}

func (c *writerCore) With(fields []zapcore.Field) zapcore.Core {
	return &writerCore{
		LevelEnabler: c.LevelEnabler,
		writer:       c.writer,
		fields:       append(c.fields, fields...),
	}
}

func (c *writerCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c *writerCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	allFields := append(c.fields, fields...)

	fieldMap := make(map[string]any)
	var requestID string

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range allFields {
		f.AddTo(enc)
		if f.Key == "request_id" {
			requestID = f.String
		}
	}
	for k, v := range enc.Fields {
		fieldMap[k] = v
	}

	return c.writer.Write(LogEntry{
		Timestamp: entry.Time.UnixMilli(),
		Level:     entry.Level.String(),
		Message:   entry.Message,
		Caller:    entry.Caller.String(),
		Fields:    fieldMap,
		RequestID: requestID,
	})
}

func (c *writerCore) Sync() error {
	return nil
}
