package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mihindugunarathne/FED-backend/internal/orders/ports"
)

const maxWebhookBody = 1 << 16

// handleWebhook is the push ingress for processor events. The payload is
// authenticated by signature, deduplicated by event id, and completed
// checkout sessions trigger fulfillment. Delivery is at-least-once, so every
// step downstream must tolerate repeats.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	event, err := h.webhooks.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook signature")
		return
	}

	ctx := r.Context()

	// Duplicate deliveries replay the recorded response. Fulfillment is also
	// idempotent on its own; this just avoids redundant processor round trips.
	if stored, err := h.service.GetIdempotentResponse(ctx, event.ID); err == nil && stored != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stored.StatusCode)
		_, _ = w.Write(stored.Body)
		return
	}

	if event.Type == "checkout.session.completed" && event.SessionID != "" {
		if _, err := h.service.Fulfill(ctx, event.SessionID); err != nil {
			// Non-2xx tells the processor to redeliver; fulfillment is
			// retriable without double effects.
			writeError(w, http.StatusInternalServerError, "fulfillment failed")
			return
		}
	}

	body, _ := json.Marshal(map[string]any{"received": true})
	_ = h.service.SaveIdempotentResponse(ctx, event.ID, ports.StoredResponse{
		StatusCode: http.StatusOK,
		Body:       body,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
