package dashboard

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/physio-intake/internal/intake"
)

// DocumentCounter reports the size of the knowledge base.
type DocumentCounter interface {
	Count() int
}

// Dashboard serves the browser chat page, its WebSocket and summary stats.
type Dashboard struct {
	engine *intake.Engine
	docs   DocumentCounter
	logger *slog.Logger
}

// New creates a Dashboard. docs may be nil.
func New(engine *intake.Engine, docs DocumentCounter, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{engine: engine, docs: docs, logger: logger}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Get("/api/dashboard/stats", d.handleStats)
	r.Get("/ws/chat", d.handleWebSocket)
}
