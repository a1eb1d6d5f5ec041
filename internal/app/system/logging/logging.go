// internal/app/system/logging/logging.go
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dalemusser/information/internal/app/settings"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes the process logger.
type Config struct {
	Level      zapcore.Level
	Path       string // active log file; rotated files sit beside it
	MaxSizeMB  int    // rotate once the active file would exceed this
	MaxBackups int    // rotated files kept
	Console    io.Writer
}

// FromSettings maps settings onto a Config that also logs to stderr.
func FromSettings(s settings.Settings) Config {
	return Config{
		Level:      s.LogLevel.ZapLevel(),
		Path:       s.LogPath,
		MaxSizeMB:  s.LogMaxSizeMB,
		MaxBackups: s.LogMaxBackups,
		Console:    os.Stderr,
	}
}

// Logger is the process logger plus the rotating file it writes to.
type Logger struct {
	*zap.Logger
	Level zap.AtomicLevel
	sink  *lumberjack.Logger
}

// New builds a logger writing "<SEVERITY> <file>:<line> <message>" lines to
// both the console and a size-rotated file.
func New(cfg Config) (*Logger, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	sink := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	}
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	level := zap.NewAtomicLevelAt(cfg.Level)
	enc := zapcore.NewConsoleEncoder(EncoderConfig())
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(console)), level),
		zapcore.NewCore(enc.Clone(), zapcore.AddSync(sink), level),
	)

	return &Logger{
		Logger: zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)),
		Level:  level,
		sink:   sink,
	}, nil
}

// Rotate forces a rotation of the file sink.
func (l *Logger) Rotate() error { return l.sink.Rotate() }

// Close flushes the logger and closes the active file.
func (l *Logger) Close() error {
	_ = l.Logger.Sync()
	return l.sink.Close()
}

// EncoderConfig drops timestamps and logger names and prints severity,
// base file name with line, then the message.
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		LevelKey:         "level",
		CallerKey:        "caller",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      LevelEncoder,
		EncodeCaller:     CallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// LevelEncoder spells levels DEBUG, INFO, WARNING, ERROR, CRITICAL.
func LevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.DebugLevel:
		enc.AppendString("DEBUG")
	case zapcore.InfoLevel:
		enc.AppendString("INFO")
	case zapcore.WarnLevel:
		enc.AppendString("WARNING")
	case zapcore.ErrorLevel:
		enc.AppendString("ERROR")
	default:
		enc.AppendString("CRITICAL")
	}
}

// CallerEncoder prints file.go:line.
func CallerEncoder(c zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	if !c.Defined {
		enc.AppendString("undefined")
		return
	}
	enc.AppendString(filepath.Base(c.File) + ":" + strconv.Itoa(c.Line))
}
