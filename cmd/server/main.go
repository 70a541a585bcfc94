package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/autonomeet/autonomeet-api/pkg/app"
	"github.com/autonomeet/autonomeet-api/pkg/booking"
	"github.com/autonomeet/autonomeet-api/pkg/config"
	"github.com/autonomeet/autonomeet-api/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg)
	defer func() { _ = log.Sync() }()

	a, err := app.Build(cfg, log)
	if err != nil {
		log.Fatal("could not start", zap.Error(err))
	}

	sweeper := booking.NewSweeper(a.Bookings, log)
	if err := sweeper.Start(cfg.PendingSweepSpec); err != nil {
		log.Fatal("invalid PENDING_SWEEP_SPEC", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	select {
	case <-sweeper.Stop().Done():
	case <-ctx.Done():
	}
	log.Info("server stopped")
}
