package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents logging verbosity levels.
type LogLevel int

// Log level constants.
const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelDebug
)

// ParseLogLevel parses a log level string.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LogLevelOff
	case "error":
		return LogLevelError
	case "info", "warn":
		return LogLevelInfo
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelError:
		return "error"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

// zapLevel maps a LogLevel onto zap. Off maps above Fatal so nothing is emitted.
func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogLevelOff:
		return zapcore.FatalLevel + 1
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Logger is a leveled printf-style logger backed by zap.
type Logger struct {
	mu       sync.Mutex
	level    LogLevel
	atom     zap.AtomicLevel
	zl       *zap.Logger
	sugar    *zap.SugaredLogger
	filePath string
}

// NewLogger creates a logger writing to filePath ("stderr" and "stdout" are
// accepted). Format is "json" or "console".
func NewLogger(level LogLevel, filePath, format string) (*Logger, error) {
	logger := &Logger{
		level:    level,
		atom:     zap.NewAtomicLevelAt(level.zapLevel()),
		filePath: filePath,
	}

	if level == LogLevelOff || filePath == "" {
		logger.zl = zap.NewNop()
		logger.sugar = logger.zl.Sugar()
		return logger, nil
	}

	if filePath != "stderr" && filePath != "stdout" {
		expanded, err := ExpandHome(filePath)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(expanded), 0o750); err != nil {
			return nil, err
		}
		// zap would create the file world-readable; create it owner-only first.
		// #nosec G304 -- log file path is from validated config
		f, err := os.OpenFile(expanded, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, err
		}
		_ = f.Close()
		filePath = expanded
		logger.filePath = expanded
	}

	var zapConfig zap.Config
	if format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zapConfig.Level = logger.atom
	zapConfig.DisableStacktrace = true
	zapConfig.Sampling = nil
	zapConfig.OutputPaths = []string{filePath}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	zl, err := zapConfig.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	logger.zl = zl
	logger.sugar = zl.Sugar()

	return logger, nil
}

// Close flushes buffered log entries.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.zl == nil {
		return nil
	}
	err := l.zl.Sync()
	// Syncing stderr/stdout fails on some platforms; that is not worth reporting.
	if l.filePath == "stderr" || l.filePath == "stdout" {
		return nil
	}
	return err
}

// SetLevel changes the log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.atom.SetLevel(level.zapLevel())
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Zap exposes the underlying structured logger.
func (l *Logger) Zap() *zap.Logger {
	if l.zl == nil {
		return zap.NewNop()
	}
	return l.zl
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.log(LogLevelInfo, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}

// Writer returns an io.Writer that writes to the logger at the specified level.
func (l *Logger) Writer(level LogLevel) io.Writer {
	return &logWriter{logger: l, level: level}
}

func (l *Logger) log(level LogLevel, format string, args ...any) {
	if l.sugar == nil {
		return
	}
	switch level {
	case LogLevelDebug:
		l.sugar.Debugf(format, args...)
	case LogLevelInfo:
		l.sugar.Infof(format, args...)
	case LogLevelError:
		l.sugar.Errorf(format, args...)
	case LogLevelOff:
	}
}

type logWriter struct {
	logger *Logger
	level  LogLevel
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.logger.log(w.level, "%s", strings.TrimSpace(string(p)))
	return len(p), nil
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	zl := zap.NewNop()
	return &Logger{level: LogLevelOff, atom: zap.NewAtomicLevelAt(LogLevelOff.zapLevel()), zl: zl, sugar: zl.Sugar()}
}

// ExpandHome expands a leading "~/" in p to the user's home directory.
func ExpandHome(p string) (string, error) {
	if !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, p[2:]), nil
}
