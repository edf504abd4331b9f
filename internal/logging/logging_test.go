package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/erraggy/oasmeta/internal/config"
	"github.com/erraggy/oasmeta/oaserrors"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(config.Log{Level: "loud"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrConfig))
}

func TestConsoleOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger, c, err := build(config.Log{Console: true}, zapcore.InfoLevel, zapcore.AddSync(&stdout), zapcore.AddSync(&stderr))
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("cache built")
	require.NoError(t, c.Close())

	assert.Contains(t, stdout.String(), "cache built")
	assert.NotContains(t, stdout.String(), "hidden")
	assert.Empty(t, stderr.String())
}

func TestFallbackToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger, _, err := build(config.Log{}, zapcore.WarnLevel, zapcore.AddSync(&stdout), zapcore.AddSync(&stderr))
	require.NoError(t, err)

	logger.Warn("duplicate path")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), `"msg":"duplicate path"`)
	assert.Contains(t, stderr.String(), `"level":"warn"`)
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oasmeta.log")
	logger, c, err := New(config.Log{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug("parsed request")
	require.NoError(t, c.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"parsed request"`)
	assert.Contains(t, string(data), `"ts":`)
}
