package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/otcheredev/hms-console/internal/config"
	"github.com/otcheredev/hms-console/internal/handlers"
	"github.com/otcheredev/hms-console/internal/repository"
	"github.com/otcheredev/hms-console/internal/services"
	"github.com/otcheredev/hms-console/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting hospital sandbox API")

	// Seed the in-memory system of record in the background; /ready reports when done
	repo := repository.New()
	var ready atomic.Bool
	go func() {
		if err := repository.Seed(context.Background(), repo, bcrypt.DefaultCost, time.Now()); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed repository")
		}
		ready.Store(true)
		log.Info().Msg("Sample data loaded")
	}()

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		gatherer = reg
	}

	router := handlers.NewRouter(handlers.Services{
		Auth:         services.NewAuthService(repo, cfg.Sandbox.JWTSecret, cfg.Sandbox.TokenTTL),
		Users:        services.NewUserService(repo),
		Patients:     services.NewPatientService(repo),
		Appointments: services.NewAppointmentService(repo),
		Records:      services.NewRecordService(repo),
		Billing:      services.NewBillingService(repo),
		Dashboards:   services.NewDashboardService(repo),
	}, handlers.RouterOptions{
		CORS:     cfg.CORS,
		Metrics:  gatherer,
		Ready:    ready.Load,
		Compress: true,
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
