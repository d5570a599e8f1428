package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/cun0/sensor-ingest/internal/domain"
	"github.com/cun0/sensor-ingest/internal/httpserver/middleware"
	"github.com/cun0/sensor-ingest/internal/ingest"
)

const statusClientClosedRequest = 499

// pushEnvelope is the body Pub/Sub POSTs to a push endpoint.
type pushEnvelope struct {
	Message struct {
		Data       string            `json:"data"`
		Attributes map[string]string `json:"attributes"`
		MessageID  string            `json:"messageId"`
		// older push deliveries use the snake_case name
		LegacyMessageID string `json:"message_id"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

func (e pushEnvelope) event() ingest.InboundEvent {
	id := e.Message.MessageID
	if id == "" {
		id = e.Message.LegacyMessageID
	}
	return ingest.InboundEvent{
		Data:       e.Message.Data,
		MessageID:  id,
		Attributes: e.Message.Attributes,
	}
}

// PostPush acknowledges with 204 once the handler completed the message.
// Any other status makes Pub/Sub redeliver it.
func (h *Handler) PostPush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var env pushEnvelope
	if err := decodeJSON(r.Body, &env); err != nil {
		writeError(w, http.StatusBadRequest, "invalid push envelope: "+err.Error())
		return
	}

	ev := env.event()
	acked := false

	err := h.ingest.Handle(r.Context(), ev, func() { acked = true })
	if err != nil {
		var we *ingest.WriteError
		switch {
		case errors.Is(err, domain.ErrInvalidPayload):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &we):
			writeError(w, http.StatusServiceUnavailable, "storage temporarily unavailable")
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			writeError(w, statusClientClosedRequest, "client closed request")
		default:
			h.logger.PrintError(err, map[string]string{
				"request_id":   middleware.GetRequestID(r.Context()),
				"component":    "pubsub_push",
				"message_id":   ev.MessageID,
				"subscription": env.Subscription,
			})
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if !acked {
		writeError(w, http.StatusInternalServerError, "message not completed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
