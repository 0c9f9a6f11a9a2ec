package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks writes every observability event as a debug log line.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnLoadStart(_ context.Context, path string) {
	h.logger.Debug("load start", "path", path)
}

func (h *logHooks) OnLoadComplete(_ context.Context, path string, rows int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "path", path, "err", err)
		return
	}
	h.logger.Debug("load done", "path", path, "rows", rows, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, family, format string) {
	h.logger.Debug("render start", "family", family, "format", format)
}

func (h *logHooks) OnRenderComplete(_ context.Context, family, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "family", family, "format", format, "err", err)
		return
	}
	h.logger.Debug("render done", "family", family, "format", format, "bytes", size, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, key string)  { h.logger.Debug("cache hit", "key", key) }
func (h *logHooks) OnCacheMiss(_ context.Context, key string) { h.logger.Debug("cache miss", "key", key) }

func (h *logHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache set", "key", key, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *logHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

func (h *logHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Debug("request error", "method", method, "path", path, "err", err)
}
