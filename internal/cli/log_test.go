package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

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

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Rendered timeline")

	out := buf.String()
	if !strings.Contains(out, "Rendered timeline (") || !strings.Contains(out, "ms)") {
		t.Errorf("progress output = %q", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext should fall back to the default logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestLogHooksWriteAtDebug(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnLoadComplete(ctx, "surveys.csv", 3, time.Millisecond, nil)
	h.OnRenderComplete(ctx, "timeline", "svg", 1024, time.Millisecond, nil)
	h.OnCacheHit(ctx, "artifact:abc")

	out := buf.String()
	for _, want := range []string{"load done", "rows=3", "render done", "family=timeline", "cache hit"} {
		if !strings.Contains(out, want) {
			t.Errorf("hook log missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	quiet := &logHooks{logger: newLogger(&buf, log.InfoLevel)}
	quiet.OnCacheMiss(ctx, "artifact:abc")
	if buf.Len() != 0 {
		t.Error("hooks should be silent above debug level")
	}
}
