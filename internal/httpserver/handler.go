package httpserver

import (
	"context"
	"net/http"

	"github.com/cun0/sensor-ingest/internal/ingest"
	"github.com/cun0/sensor-ingest/internal/jsonlog"
)

// EventHandler is the ingest entry point the push endpoint delivers to.
type EventHandler interface {
	Handle(ctx context.Context, ev ingest.InboundEvent, done func()) error
}

type Handler struct {
	logger *jsonlog.Logger
	ingest EventHandler
}

func New(logger *jsonlog.Logger, ingest EventHandler) *Handler {
	return &Handler{
		logger: logger,
		ingest: ingest,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
