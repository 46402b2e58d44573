package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/janitor/internal/config"
)

func readLogFile(t *testing.T, path string) string {
	t.Helper()
	// #nosec G304 -- test file path
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected config.LogLevel
	}{
		{"off", config.LogLevelOff},
		{"NONE", config.LogLevelOff},
		{"error", config.LogLevelError},
		{"info", config.LogLevelInfo},
		{"warn", config.LogLevelInfo},
		{"  debug  ", config.LogLevelDebug},
		{"", config.LogLevelError},
		{"verbose", config.LogLevelError},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, config.ParseLogLevel(tt.input))
		})
	}
}

func TestLogLevel_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "off", config.LogLevelOff.String())
	assert.Equal(t, "error", config.LogLevelError.String())
	assert.Equal(t, "info", config.LogLevelInfo.String())
	assert.Equal(t, "debug", config.LogLevelDebug.String())
	assert.Equal(t, "error", config.LogLevel(99).String())
}

func TestNewLogger_EmptyPath(t *testing.T) {
	t.Parallel()
	logger, err := config.NewLogger(config.LogLevelDebug, "", "console")
	require.NoError(t, err)
	defer func() { _ = logger.Close() }()

	logger.Debug("test message")
	logger.Error("test error")
	assert.NotNil(t, logger.Zap())
}

func TestNewLogger_WritesFile(t *testing.T) {
	t.Parallel()
	logPath := filepath.Join(t.TempDir(), "nested", "janitor.log")

	logger, err := config.NewLogger(config.LogLevelDebug, logPath, "console")
	require.NoError(t, err)

	logger.Debug("scanned %d holdings", 3)
	logger.Error("indexer %s failed", "chainbase")
	require.NoError(t, logger.Close())

	content := readLogFile(t, logPath)
	assert.Contains(t, content, "scanned 3 holdings")
	assert.Contains(t, content, "indexer chainbase failed")

	info, err := os.Stat(logPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNewLogger_JSONFormat(t *testing.T) {
	t.Parallel()
	logPath := filepath.Join(t.TempDir(), "janitor.log")

	logger, err := config.NewLogger(config.LogLevelInfo, logPath, "json")
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, logger.Close())

	content := readLogFile(t, logPath)
	assert.Contains(t, content, `"msg":"hello"`)
	assert.Contains(t, content, `"level":"info"`)
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()
	logPath := filepath.Join(t.TempDir(), "janitor.log")

	logger, err := config.NewLogger(config.LogLevelError, logPath, "console")
	require.NoError(t, err)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Error("visible error")

	logger.SetLevel(config.LogLevelDebug)
	assert.Equal(t, config.LogLevelDebug, logger.Level())
	logger.Debug("now visible")

	logger.SetLevel(config.LogLevelOff)
	logger.Error("muted")
	require.NoError(t, logger.Close())

	content := readLogFile(t, logPath)
	assert.NotContains(t, content, "hidden debug")
	assert.NotContains(t, content, "hidden info")
	assert.Contains(t, content, "visible error")
	assert.Contains(t, content, "now visible")
	assert.NotContains(t, content, "muted")
}

func TestLogger_Writer(t *testing.T) {
	t.Parallel()
	logPath := filepath.Join(t.TempDir(), "janitor.log")

	logger, err := config.NewLogger(config.LogLevelDebug, logPath, "console")
	require.NoError(t, err)

	n, err := logger.Writer(config.LogLevelError).Write([]byte("from writer\n"))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	require.NoError(t, logger.Close())

	assert.Contains(t, readLogFile(t, logPath), "from writer")
}

func TestNullLogger(t *testing.T) {
	t.Parallel()
	logger := config.NullLogger()
	assert.Equal(t, config.LogLevelOff, logger.Level())

	logger.Debug("test debug")
	logger.Error("test error")
	require.NoError(t, logger.Close())
}

func TestExpandHome(t *testing.T) {
	t.Parallel()
	p, err := config.ExpandHome("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", p)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	p, err = config.ExpandHome("~/x.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x.log"), p)
}
