package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hotelstaff/orderfeed/internal/middleware"
)

// NotificationHandler reports the push registration of the active session.
type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.Get)
}

// Get returns the registration state; done is false while it is running.
func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := middleware.SessionFromContext(r.Context())
	if s == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, s.Registration())
}
