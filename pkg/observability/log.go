package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, with failures at
// warn level. It implements all hook interfaces.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns LogHooks writing to logger.
func NewLogHooks(logger *log.Logger) LogHooks {
	return LogHooks{Logger: logger}
}

func (h LogHooks) OnComposeStart(_ context.Context, photos int) {
	h.Logger.Debug("compose start", "photos", photos)
}

func (h LogHooks) OnComposeComplete(_ context.Context, pages int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("compose failed", "elapsed", d.Round(time.Millisecond), "err", err)
		return
	}
	h.Logger.Debug("compose done", "pages", pages, "elapsed", d.Round(time.Millisecond))
}

func (h LogHooks) OnGrouped(_ context.Context, groups int, d time.Duration) {
	h.Logger.Debug("grouped", "groups", groups, "elapsed", d.Round(time.Microsecond))
}

func (h LogHooks) OnPageChosen(_ context.Context, page int, templateID string, score float64, fallback bool) {
	h.Logger.Debug("page", "n", page, "tpl", templateID, "score", score, "fallback", fallback)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnFeaturesLoaded(_ context.Context, backend string, requested, found int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("features unavailable", "backend", backend, "err", err)
		return
	}
	h.Logger.Debug("features loaded", "backend", backend, "requested", requested, "found", found, "elapsed", d.Round(time.Millisecond))
}

var (
	_ PipelineHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
	_ FeatureHooks  = LogHooks{}
)
