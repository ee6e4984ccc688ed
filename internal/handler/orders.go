package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hotelstaff/orderfeed/internal/backend"
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/middleware"
	"github.com/hotelstaff/orderfeed/internal/order"
	"github.com/hotelstaff/orderfeed/internal/service"
	"github.com/hotelstaff/orderfeed/internal/session"
)

// OrderHandler serves order details of the active session.
type OrderHandler struct{}

func NewOrderHandler() *OrderHandler {
	return &OrderHandler{}
}

// RegisterRoutes registers detail endpoints. Expected to be mounted at
// /orders behind session authentication.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{domain}/{id}", h.Get)
	r.Put("/{domain}/{id}/status", h.SelectStatus)
}

type selectStatusRequest struct {
	Status string `json:"status"`
}

// Get resolves one order's line items, fetching them on first use.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := middleware.SessionFromContext(r.Context())
	if s == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	domain, err := enum.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown order domain"})
		return
	}

	v, err := s.Detail(r.Context(), domain, order.ID(chi.URLParam(r, "id")))
	if err != nil {
		writeDetailError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// SelectStatus changes the status shown for an order. The change stays in
// this process; the backend is never told.
func (h *OrderHandler) SelectStatus(w http.ResponseWriter, r *http.Request) {
	s := middleware.SessionFromContext(r.Context())
	if s == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	domain, err := enum.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown order domain"})
		return
	}

	var req selectStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	v, err := s.SelectStatus(domain, order.ID(chi.URLParam(r, "id")), req.Status)
	if err != nil {
		writeDetailError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// writeDetailError maps detail errors to responses. Backend causes are never
// echoed to the client.
func writeDetailError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case backend.IsConfig(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrDetailNotLoaded):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, session.ErrSessionClosed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "session closed"})
	default:
		// Transport failures and contract violations alike.
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": service.DetailFailureMessage})
	}
}
