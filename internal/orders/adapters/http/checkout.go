package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mihindugunarathne/FED-backend/internal/identity"
)

type createSessionPayload struct {
	OrderID string `json:"order_id"`
}

func (h *Handler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	principal, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload createSessionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(payload.OrderID) == "" {
		writeError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	session, err := h.service.CreateCheckoutSession(r.Context(), payload.OrderID, principal.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id":    session.ID,
		"client_secret": session.ClientSecret,
	})
}

// checkoutStatus is the poll ingress: the client supplies the session id it
// was handed at checkout, and fulfillment runs if the payment has settled.
func (h *Handler) checkoutStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	status, err := h.service.GetCheckoutStatus(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
