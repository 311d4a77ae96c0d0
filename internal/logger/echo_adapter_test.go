package logger

import (
	"bytes"
	"testing"
	"time"

	gommonlog "github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
)

func TestEchoLoggerRoutesLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := NewEchoLogger(NewSlogLogger(&buf, LogLevelInfo, time.UTC).Module("echo"))

	e.Debugf("hidden %d", 1)
	e.Printf("listening on %s", ":8080")
	e.Errorj(gommonlog.JSON{"route": "/codes"})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `msg="listening on :8080"`)
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "/codes")
	assert.Contains(t, out, "module=echo")
}

func TestEchoLoggerLevelAndPanic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := NewEchoLogger(NewSlogLogger(&buf, LogLevelInfo, time.UTC))

	assert.Equal(t, gommonlog.INFO, e.Level())
	e.SetLevel(gommonlog.WARN)
	assert.Equal(t, gommonlog.WARN, e.Level())

	assert.PanicsWithValue(t, "cannot bind", func() { e.Fatal("cannot bind") })
	assert.Contains(t, buf.String(), "cannot bind")
}

func TestEchoLoggerNilFallback(t *testing.T) {
	t.Parallel()

	e := NewEchoLogger(nil)
	assert.NotPanics(t, func() { e.Info("dropped") })
}
