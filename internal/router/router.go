package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hotelstaff/orderfeed/internal/auth"
	"github.com/hotelstaff/orderfeed/internal/config"
	"github.com/hotelstaff/orderfeed/internal/handler"
	"github.com/hotelstaff/orderfeed/internal/metrics"
	mw "github.com/hotelstaff/orderfeed/internal/middleware"
	"github.com/hotelstaff/orderfeed/internal/session"
	"github.com/hotelstaff/orderfeed/internal/ws"
	"go.uber.org/zap"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, sessions *session.Manager, hub *ws.Hub, m *metrics.Recorder, log *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(log))
	r.Use(middleware.Recoverer)

	// CORS for the staff app's web view
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", m.Handler())

	sessionHandler := handler.NewSessionHandler(sessions, cfg.SessionSecret, cfg.SessionTTL)
	sessionHandler.RegisterPublicRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.SessionSecret, func(c *auth.Claims) bool {
			s, err := sessions.Get(c.SessionID)
			return err == nil && s.Hotel == c.HotelName
		}, log, w, r)
	})

	// Protected routes (require the active session's token)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.SessionSecret))
		r.Use(mw.RequireSession(sessions))

		sessionHandler.RegisterRoutes(r)

		feedHandler := handler.NewFeedHandler()
		r.Route("/feeds", feedHandler.RegisterRoutes)

		orderHandler := handler.NewOrderHandler()
		r.Route("/orders", orderHandler.RegisterRoutes)

		notificationHandler := handler.NewNotificationHandler()
		notificationHandler.RegisterRoutes(r)
	})

	log.Info("router initialized")
	return r
}
