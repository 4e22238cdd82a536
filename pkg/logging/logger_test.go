package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p1812go/pkg/config"
)

func TestInit(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		EnableTrace = false
	})

	logPath := filepath.Join(t.TempDir(), "logs", "p1812.log")
	var console bytes.Buffer

	cleanup, err := initWithConsole(&config.LogConfig{Path: logPath, Level: "DEBUG", MaxSizeMB: 1}, &console)
	require.NoError(t, err)

	slog.Debug("debug only in file")
	slog.Info("sweep started", "angles", 720)
	cleanup()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "debug only in file")
	assert.Contains(t, string(content), "angles=720")

	assert.Contains(t, console.String(), "sweep started")
	assert.NotContains(t, console.String(), "debug only in file")
	assert.False(t, EnableTrace)
}

func TestInit_ConsoleOnly(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		EnableTrace = false
	})

	var console bytes.Buffer
	cleanup, err := initWithConsole(&config.LogConfig{Level: "trace"}, &console)
	require.NoError(t, err)
	defer cleanup()

	assert.True(t, EnableTrace)

	logger := slog.Default().With("component", "sweep")
	Trace(logger, "ray done", "angle", 90.0)
	logger.Warn("clutter grid missing")

	out := console.String()
	// Trace goes out at DEBUG, which the console drops.
	assert.NotContains(t, out, "ray done")
	assert.True(t, strings.Contains(out, "component=sweep"))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":  slog.LevelDebug,
		"trace":  slog.LevelDebug,
		" warn ": slog.LevelWarn,
		"ERROR":  slog.LevelError,
		"bogus":  slog.LevelInfo,
		"":       slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
