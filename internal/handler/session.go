package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hotelstaff/orderfeed/internal/auth"
	"github.com/hotelstaff/orderfeed/internal/middleware"
	"github.com/hotelstaff/orderfeed/internal/service"
	"github.com/hotelstaff/orderfeed/internal/session"
	"go.uber.org/zap"
)

// SessionManager defines the session operations needed by session handlers.
// Satisfied by *session.Manager; narrow interface for testability.
type SessionManager interface {
	Open(hotel string, device service.Device) (*session.Session, error)
	Close(id uuid.UUID) error
}

// SessionHandler opens and closes the hotel context.
type SessionHandler struct {
	sessions SessionManager
	secret   string
	ttl      time.Duration
}

func NewSessionHandler(sessions SessionManager, secret string, ttl time.Duration) *SessionHandler {
	return &SessionHandler{sessions: sessions, secret: secret, ttl: ttl}
}

// RegisterPublicRoutes registers the unauthenticated session endpoint.
func (h *SessionHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/session", h.Open)
}

// RegisterRoutes registers session endpoints that need a token.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Delete("/session", h.Close)
}

// --- Request / Response types ---

type openSessionRequest struct {
	HotelName     string              `json:"hotel_name"`
	Notifications notificationRequest `json:"notifications"`
}

type notificationRequest struct {
	PermissionGranted bool   `json:"permission_granted"`
	PushToken         string `json:"push_token"`
}

type sessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	HotelName string    `json:"hotel_name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// --- Handlers ---

// Open starts a session for a hotel, replacing any active one. Both feeds
// and the push registration start immediately.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	hotel := strings.TrimSpace(req.HotelName)
	if hotel == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hotel_name is required"})
		return
	}

	s, err := h.sessions.Open(hotel, session.StaticDevice{
		Granted: req.Notifications.PermissionGranted,
		Token:   strings.TrimSpace(req.Notifications.PushToken),
	})
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server is shutting down"})
		return
	}

	token, err := auth.GenerateToken(h.secret, s.ID, s.Hotel, h.ttl)
	if err != nil {
		zap.L().Error("signing session token failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: s.ID,
		HotelName: s.Hotel,
		Token:     token,
		ExpiresAt: time.Now().Add(h.ttl).UTC(),
	})
}

// Close ends the caller's session.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	if err := h.sessions.Close(claims.SessionID); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode JSON response", zap.Error(err))
	}
}
