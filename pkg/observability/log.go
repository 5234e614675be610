package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, errors at warn.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnLayoutStart(_ context.Context, nodeCount int) {
	h.Logger.Debug("layout start", "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, boxCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("layout failed", "err", err, "duration", d)
		return
	}
	h.Logger.Debug("layout complete", "boxes", boxCount, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnFetchStart(_ context.Context, source string) {
	h.Logger.Debug("fetch start", "source", source)
}

func (h *LogHooks) OnFetchComplete(_ context.Context, source string, positions int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("fetch failed", "source", source, "err", err, "duration", d)
		return
	}
	h.Logger.Debug("fetch complete", "source", source, "positions", positions, "duration", d)
}

func (h *LogHooks) OnToggle(_ context.Context, nodeID string, expanded bool) {
	h.Logger.Debug("toggle", "node", nodeID, "expanded", expanded)
}

func (h *LogHooks) OnFit(_ context.Context, zoom float64) {
	h.Logger.Debug("fit", "zoom", zoom)
}
