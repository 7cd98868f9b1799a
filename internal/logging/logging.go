package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/handiism/audiotagtools/internal/config"
	"github.com/handiism/audiotagtools/internal/events"
)

// Options configures New.
type Options struct {
	Level string
	// File is the rotated JSON log; empty disables it.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	// Console receives human output; nil means os.Stderr.
	Console io.Writer
}

// FromSettings derives Options from the config file.
func FromSettings(s *config.Settings) Options {
	return Options{
		Level:      s.Logging.Level,
		File:       s.Paths.LogFile,
		MaxSizeMB:  s.Logging.MaxSizeMB,
		MaxBackups: s.Logging.MaxBackups,
		MaxAgeDays: s.Logging.MaxAgeDays,
		Compress:   s.Logging.Compress,
	}
}

// ParseLevel maps debug, info, warn and error to zap levels.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

// New builds the tee logger. The returned closer flushes and closes the
// rotated file.
func New(opts Options) (*zap.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	if isTerminal(console) {
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.AddSync(console), level),
	}

	closer := func() error { return nil }
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		rotated := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		fileConfig := zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}
		// The file keeps debug entries regardless of the console level.
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileConfig), zapcore.AddSync(rotated), zapcore.DebugLevel))
		closer = rotated.Close
	}

	return zap.New(zapcore.NewTee(cores...)), closer, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Sink is an events.Sink writing to zap.
type Sink struct {
	logger *zap.Logger
	close  func() error
}

// NewSink builds the tee logger and wraps it in a Sink. Call Close when
// done.
func NewSink(opts Options) (*Sink, error) {
	logger, closer, err := New(opts)
	if err != nil {
		return nil, err
	}
	return &Sink{logger: logger, close: closer}, nil
}

// WrapLogger returns a Sink over an existing logger. Close only syncs it.
func WrapLogger(logger *zap.Logger) *Sink {
	return &Sink{logger: logger, close: func() error { return nil }}
}

// With returns a Sink that adds fields to every entry, such as the run id.
// Closing the parent closes the child's file too.
func (s *Sink) With(fields ...zap.Field) *Sink {
	return &Sink{logger: s.logger.With(fields...), close: func() error { return nil }}
}

// Logger exposes the underlying logger.
func (s *Sink) Logger() *zap.Logger { return s.logger }

// Emit implements events.Sink.
func (s *Sink) Emit(e events.Event) {
	fields := make([]zap.Field, 0, 4)
	if e.Dir != "" {
		fields = append(fields, zap.String("dir", e.Dir))
	}
	if e.File != "" {
		fields = append(fields, zap.String("file", e.File))
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}

	switch e.Level {
	case events.LevelVerbose:
		s.logger.Debug(e.Message, fields...)
	case events.LevelWarning:
		s.logger.Warn(e.Message, fields...)
	case events.LevelError:
		s.logger.Error(e.Message, fields...)
	case events.LevelSuccess:
		s.logger.Info(e.Message, append(fields, zap.Bool("success", true))...)
	default:
		s.logger.Info(e.Message, fields...)
	}
}

// Close flushes the logger and closes the rotated file.
func (s *Sink) Close() error {
	// Syncing a console fd fails on some platforms; only the file matters.
	_ = s.logger.Sync()
	return s.close()
}
