package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{log.InfoLevel, func(l *log.Logger) { l.Info("x") }, true},
		{log.InfoLevel, func(l *log.Logger) { l.Debug("x") }, false},
		{log.DebugLevel, func(l *log.Logger) { l.Debug("x") }, true},
		{log.WarnLevel, func(l *log.Logger) { l.Info("x") }, false},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		tt.emit(newLogger(&buf, tt.level))
		if got := buf.Len() > 0; got != tt.want {
			t.Errorf("level %s: logged = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Checked blueprints", "count", 3)

	out := buf.String()
	for _, want := range []string{"Checked blueprints", "count=3", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output missing %q: %s", want, out)
		}
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnLoadStart(ctx, "wing.toml")
	h.OnLoadComplete(ctx, "wing.toml", 2, time.Millisecond, nil)
	h.OnLoadComplete(ctx, "broken.toml", 0, time.Millisecond, errors.New("bad room"))
	h.OnCacheHit(ctx, "plan")
	h.OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, nil)
	h.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"load start", "rooms=2", "load failed", "bad room", "kind=plan", "render done", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.InfoLevel)}
	h.OnCacheMiss(context.Background(), "artifact")
	h.OnRequest(context.Background(), "GET", "/healthz")
	if buf.Len() != 0 {
		t.Errorf("hooks should log at debug level only, got %q", buf.String())
	}
}
