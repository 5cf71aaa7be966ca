package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mihindugunarathne/FED-backend/internal/catalog/app"
	"github.com/mihindugunarathne/FED-backend/internal/catalog/ports"
	"github.com/mihindugunarathne/FED-backend/internal/identity"
)

// Handler exposes HTTP endpoints for catalog reads and admin product creation.
type Handler struct {
	service  *app.Service
	verifier identity.Verifier
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service, verifier identity.Verifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

// Register binds the catalog handlers to the provided ServeMux. Reads are
// public; creation requires the admin role.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/products", h.handleProducts)
	mux.HandleFunc("/v1/products/", h.getProduct)
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listProducts(w, r)
	case http.MethodPost:
		identity.RequireAdmin(h.verifier, http.HandlerFunc(h.createProduct)).ServeHTTP(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	categoryID := r.URL.Query().Get("category_id")

	products, err := h.service.ListProducts(r.Context(), categoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/products/"), "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var input app.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
