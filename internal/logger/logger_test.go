package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLoggerLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewSlogLogger(&buf, LogLevelInfo, time.UTC)

	log.Debug("hidden")
	log.Info("shown", String("slug", "hola-mundo"), Int("count", 3))
	log.Trace("also hidden")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "slug=hola-mundo")
	assert.Contains(t, out, "count=3")
	assert.NotContains(t, out, "time=", "console output omits timestamps")
}

func TestModuleScoping(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewSlogLogger(&buf, LogLevelDebug, time.UTC).Module("cms").Module("cache")

	log.Debug("miss")

	assert.Contains(t, buf.String(), "module=cms.cache")
}

func TestWithFieldsAreImmutable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := NewSlogLogger(&buf, LogLevelInfo, time.UTC).Module("http")
	child := base.With(String("request_id", "abc12345"))

	base.Info("parent")
	child.Info("child")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], "request_id")
	assert.Contains(t, lines[1], "request_id=abc12345")
}

func TestWithContextAddsTraceID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewSlogLogger(&buf, LogLevelInfo, time.UTC)

	ctx := WithTraceID(context.Background(), "trace-1")
	log.WithContext(ctx).Info("with trace")
	log.WithContext(context.Background()).Info("without trace")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "trace_id=trace-1")
	assert.NotContains(t, lines[1], "trace_id")
}

func TestFieldConversion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewSlogLogger(&buf, LogLevelInfo, time.UTC)

	log.Info("fields",
		Duration("elapsed", 1500*time.Millisecond),
		Float64("ratio", 0.123456),
		Bool("cached", true),
		Error(errors.New("boom")))

	out := buf.String()
	assert.Contains(t, out, "elapsed=1.5s")
	assert.Contains(t, out, "ratio=0.123")
	assert.Contains(t, out, "cached=true")
	assert.Contains(t, out, "error=boom")
}

func TestCentralLoggerModuleLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cfg := &LoggingConfig{
		DefaultLevel: "info",
		Timezone:     "UTC",
		Console:      &ConsoleOutput{Enabled: true, Level: "debug"},
		FileOutput:   &FileOutput{Enabled: false},
		ModuleLevels: map[string]string{"blocks": "debug"},
	}
	cl, err := newCentralLogger(cfg, &buf)
	require.NoError(t, err)

	cl.Module("cms").Debug("cms debug")
	cl.Module("blocks").Debug("blocks debug")

	out := buf.String()
	assert.NotContains(t, out, "cms debug")
	assert.Contains(t, out, "blocks debug")
}

func TestCentralLoggerFileOutputIsJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	cfg := &LoggingConfig{
		Timezone:   "UTC",
		Console:    &ConsoleOutput{Enabled: false},
		FileOutput: &FileOutput{Enabled: true, Path: path, Level: "info"},
	}
	cl, err := newCentralLogger(cfg, &bytes.Buffer{})
	require.NoError(t, err)

	cl.Module("http").Info("request", Int("status", 200))
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &record))
	assert.Equal(t, "request", record["msg"])
	assert.Equal(t, "http", record["module"])
	assert.InDelta(t, 200, record["status"], 0)
}

func TestCentralLoggerRejectsBadTimezone(t *testing.T) {
	t.Parallel()

	_, err := newCentralLogger(&LoggingConfig{Timezone: "Mars/Olympus"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestApplyConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := &LoggingConfig{}
	applyConfigDefaults(cfg)

	assert.Equal(t, DefaultLogLevel, cfg.DefaultLevel)
	require.NotNil(t, cfg.Console)
	assert.True(t, cfg.Console.Enabled)
	require.NotNil(t, cfg.FileOutput)
	assert.False(t, cfg.FileOutput.Enabled)
	assert.Equal(t, DefaultLogPath, cfg.FileOutput.Path)
}
