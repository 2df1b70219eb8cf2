package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&buf, log.InfoLevel))

	prog := startProgress(ctx, "apply", "order.json")
	prog.done("Applied 3 actions", "changes", 2)

	out := buf.String()
	for _, want := range []string{"Applied 3 actions", "flow=order.json", "changes=2", "took="} {
		if !strings.Contains(out, want) {
			t.Errorf("done() output %q lacks %q", out, want)
		}
	}
}

func TestProgressFail(t *testing.T) {
	var buf bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&buf, log.DebugLevel))

	boom := errors.New("boom")
	prog := startProgress(ctx, "render", "")
	if err := prog.fail(boom); err != boom {
		t.Errorf("fail() = %v, want %v", err, boom)
	}
	if !strings.Contains(buf.String(), "render failed") {
		t.Errorf("fail() output %q lacks the step", buf.String())
	}
	if strings.Contains(buf.String(), "flow=") {
		t.Error("progress without a path logged a flow field")
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() without a logger should return log.Default()")
	}

	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext() should return the attached logger")
	}
}
