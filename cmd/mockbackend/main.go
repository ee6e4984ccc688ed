package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hotelstaff/orderfeed/internal/logger"
	"github.com/hotelstaff/orderfeed/internal/mockbackend"
	"go.uber.org/zap"
)

func main() {
	// CLI flags
	addr := flag.String("addr", "", "Listen address")
	hotel := flag.String("hotel", "", "Hotel name the fixtures belong to")
	legacy := flag.Bool("legacy-outdoor", false, "Serve outdoor orders with PENDING/ACCEPTED/DELIVERED statuses")
	flag.Parse()

	// Fall back to environment variables, then defaults
	if *addr == "" {
		*addr = os.Getenv("MOCK_BACKEND_ADDR")
	}
	if *addr == "" {
		*addr = ":8090"
	}
	if *hotel == "" {
		*hotel = os.Getenv("MOCK_BACKEND_HOTEL")
	}
	if *hotel == "" {
		*hotel = "GrandHotel"
	}

	log := logger.New(logger.Config{Level: "debug", Format: "console"})
	defer log.Sync()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mockbackend.New(mockbackend.DefaultFixtures(*hotel, *legacy), log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("mock backend listening",
			zap.String("addr", *addr),
			zap.String("hotel", *hotel),
			zap.Bool("legacy_outdoor", *legacy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("mock backend failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("mock backend shutdown", zap.Error(err))
	}
}
