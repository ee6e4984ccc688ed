package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hotelstaff/orderfeed/internal/backend"
	"github.com/hotelstaff/orderfeed/internal/config"
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/logger"
	"github.com/hotelstaff/orderfeed/internal/metrics"
	"github.com/hotelstaff/orderfeed/internal/router"
	"github.com/hotelstaff/orderfeed/internal/session"
	"github.com/hotelstaff/orderfeed/internal/ws"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger config comes from cfg, so this one goes to a default logger.
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer log.Sync()
	zap.ReplaceGlobals(log)

	client, err := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, backend.WithLogger(log))
	if err != nil {
		log.Fatal("invalid backend configuration", zap.Error(err))
	}

	m := metrics.New()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	hub := ws.NewHub()
	go hub.Run(ctx)

	sessions := session.NewManager(client, cfg.Vocabularies, log, m)
	sessions.OnOpen(ws.Bridge(hub, log))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, sessions, hub, m, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("backend", cfg.BackendBaseURL),
			zap.String("room_vocabulary", cfg.Vocabularies[enum.DomainRoom].Name),
			zap.String("outdoor_vocabulary", cfg.Vocabularies[enum.DomainOutdoor].Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	sessions.Shutdown()
	stop()

	log.Info("server exited")
}
