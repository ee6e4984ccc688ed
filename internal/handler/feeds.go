package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/feed"
	"github.com/hotelstaff/orderfeed/internal/middleware"
	"github.com/hotelstaff/orderfeed/internal/session"
)

// FeedHandler serves the Room and Outdoor order lists of the active session.
type FeedHandler struct{}

func NewFeedHandler() *FeedHandler {
	return &FeedHandler{}
}

// RegisterRoutes registers feed endpoints. Expected to be mounted at /feeds
// behind session authentication.
func (h *FeedHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{domain}", h.Get)
	r.Put("/{domain}/tab", h.SelectTab)
	r.Post("/{domain}/refresh", h.Refresh)
}

type selectTabRequest struct {
	Tab string `json:"tab"`
}

// Get returns the feed filtered by its active tab.
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, store.View())
}

// SelectTab switches the active tab. It never refetches.
func (h *FeedHandler) SelectTab(w http.ResponseWriter, r *http.Request) {
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}

	var req selectTabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	tab, err := enum.ParseTab(req.Tab)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tab must be one of ACTIVE, PROCESSING, COMPLETED"})
		return
	}

	store.SelectTab(tab)
	writeJSON(w, http.StatusOK, store.View())
}

// Refresh re-runs the list fetch. The response shows the feed as loading;
// the outcome arrives over the websocket or a later Get.
func (h *FeedHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	s := middleware.SessionFromContext(r.Context())
	store, ok := sessionStore(w, r)
	if !ok {
		return
	}

	if err := s.Refresh(store.Domain()); err != nil {
		if errors.Is(err, session.ErrSessionClosed) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "session closed"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusAccepted, store.View())
}

// sessionStore resolves the {domain} store of the request's session, writing
// the error response itself when it cannot.
func sessionStore(w http.ResponseWriter, r *http.Request) (*feed.Store, bool) {
	s := middleware.SessionFromContext(r.Context())
	if s == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return nil, false
	}
	domain, err := enum.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown order domain"})
		return nil, false
	}
	store := s.Store(domain)
	if store == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown order domain"})
		return nil, false
	}
	return store, true
}
