package logger

import (
	"fmt"
	"io"
	"sync/atomic"

	gommonlog "github.com/labstack/gommon/log"
)

// EchoLogger satisfies echo.Logger so framework messages, such as recovered
// panics, go through the structured logger instead of echo's own writer.
//
//	e.Logger = logger.NewEchoLogger(log.Module("echo"))
type EchoLogger struct {
	log   Logger
	level atomic.Uint32
}

// NewEchoLogger wraps l. A nil l writes nowhere.
func NewEchoLogger(l Logger) *EchoLogger {
	if l == nil {
		l = NewSlogLogger(io.Discard, LogLevelError, nil)
	}
	e := &EchoLogger{log: l}
	e.level.Store(uint32(gommonlog.INFO))
	return e
}

// Output and prefix settings belong to the wrapped logger; these are no-ops.
func (e *EchoLogger) Output() io.Writer { return io.Discard }
func (e *EchoLogger) SetOutput(io.Writer) {}
func (e *EchoLogger) Prefix() string { return "" }
func (e *EchoLogger) SetPrefix(string) {}
func (e *EchoLogger) SetHeader(string) {}
func (e *EchoLogger) Level() gommonlog.Lvl { return gommonlog.Lvl(e.level.Load()) }
func (e *EchoLogger) SetLevel(v gommonlog.Lvl) { e.level.Store(uint32(v)) }

func (e *EchoLogger) Print(i ...any) { e.log.Info(fmt.Sprint(i...)) }
func (e *EchoLogger) Printf(format string, a ...any) { e.log.Info(fmt.Sprintf(format, a...)) }
func (e *EchoLogger) Printj(j gommonlog.JSON) { e.log.Info("echo", Any("data", j)) }

func (e *EchoLogger) Debug(i ...any) { e.log.Debug(fmt.Sprint(i...)) }
func (e *EchoLogger) Debugf(format string, a ...any) { e.log.Debug(fmt.Sprintf(format, a...)) }
func (e *EchoLogger) Debugj(j gommonlog.JSON) { e.log.Debug("echo", Any("data", j)) }

func (e *EchoLogger) Info(i ...any) { e.log.Info(fmt.Sprint(i...)) }
func (e *EchoLogger) Infof(format string, a ...any) { e.log.Info(fmt.Sprintf(format, a...)) }
func (e *EchoLogger) Infoj(j gommonlog.JSON) { e.log.Info("echo", Any("data", j)) }

func (e *EchoLogger) Warn(i ...any) { e.log.Warn(fmt.Sprint(i...)) }
func (e *EchoLogger) Warnf(format string, a ...any) { e.log.Warn(fmt.Sprintf(format, a...)) }
func (e *EchoLogger) Warnj(j gommonlog.JSON) { e.log.Warn("echo", Any("data", j)) }

func (e *EchoLogger) Error(i ...any) { e.log.Error(fmt.Sprint(i...)) }
func (e *EchoLogger) Errorf(format string, a ...any) { e.log.Error(fmt.Sprintf(format, a...)) }
func (e *EchoLogger) Errorj(j gommonlog.JSON) { e.log.Error("echo", Any("data", j)) }

// Fatal variants log and panic rather than exit, leaving shutdown to the caller.
func (e *EchoLogger) Fatal(i ...any) { e.fail(fmt.Sprint(i...)) }
func (e *EchoLogger) Fatalf(format string, a ...any) { e.fail(fmt.Sprintf(format, a...)) }
func (e *EchoLogger) Fatalj(j gommonlog.JSON) { e.fail(fmt.Sprintf("%v", j)) }

func (e *EchoLogger) Panic(i ...any) { e.fail(fmt.Sprint(i...)) }
func (e *EchoLogger) Panicf(format string, a ...any) { e.fail(fmt.Sprintf(format, a...)) }
func (e *EchoLogger) Panicj(j gommonlog.JSON) { e.fail(fmt.Sprintf("%v", j)) }

func (e *EchoLogger) fail(msg string) {
	e.log.Error(msg)
	panic(msg)
}
