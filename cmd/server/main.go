// Package main is the entry point for the civic reporting backend
// server. It provides a REST API for citizen report filing,
// interactions, the points ledger, and operational analytics.
//
// Architecture:
//   - Reports move through a status state machine; every employee edit
//     appends an immutable update_history row
//   - The points ledger serializes balance mutation per citizen under a
//     database row lock (one credit per filed report, never negative)
//   - Analytics are pure reads; the hotspot ranking is precomputed by a
//     background worker into redis
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vozurbana/civic-server/internal/config"
	"github.com/vozurbana/civic-server/internal/database"
	"github.com/vozurbana/civic-server/internal/handlers"
	"github.com/vozurbana/civic-server/internal/middleware"
	"github.com/vozurbana/civic-server/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	sugar.Infow("Starting Civic Reporting Server",
		"port", cfg.Port,
		"env", cfg.Environment,
	)

	// Initialize database connection pool
	db, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the hotspot cache
	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		sugar.Fatalf("Failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	// Initialize services
	identitySvc := services.NewIdentityService(db, sugar)
	catalogSvc := services.NewCatalogService(db, sugar)
	pointsSvc := services.NewPointsService(db, sugar)
	reportSvc := services.NewReportService(db, pointsSvc, sugar)
	interactionSvc := services.NewInteractionService(db, sugar)
	analyticsSvc := services.NewAnalyticsService(db, sugar)
	hotspotWorker := services.NewHotspotWorker(analyticsSvc, rdb, cfg.HotspotMinReports, cfg.HotspotLimit, sugar)

	// Start background hotspot cache worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go hotspotWorker.Start(workerCtx, time.Duration(cfg.HotspotRefreshMinutes)*time.Minute)

	// Initialize handlers
	identityHandler := handlers.NewIdentityHandler(identitySvc, sugar)
	catalogHandler := handlers.NewCatalogHandler(catalogSvc, sugar)
	reportHandler := handlers.NewReportHandler(reportSvc, sugar)
	interactionHandler := handlers.NewInteractionHandler(interactionSvc, sugar)
	pointsHandler := handlers.NewPointsHandler(pointsSvc, sugar)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsSvc, hotspotWorker, sugar)
	healthHandler := handlers.NewHealthHandler(db, sugar)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(rdb, cfg.RateLimitRPM, sugar))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.Check)
		r.Get("/health/ready", healthHandler.Ready)

		// Identity
		r.Route("/citizens", func(r chi.Router) {
			r.Post("/", identityHandler.RegisterCitizen)
			r.Get("/", identityHandler.ListCitizens)
			r.Get("/{cpf}", identityHandler.GetCitizen)
			r.Get("/{cpf}/balance", pointsHandler.Balance)
			r.Post("/{cpf}/redeem", pointsHandler.Redeem)
		})
		r.Post("/employees", identityHandler.RegisterEmployee)

		// Reference data
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", catalogHandler.ListCategories)
			r.Post("/", catalogHandler.CreateCategory)
		})
		r.Route("/benefits", func(r chi.Router) {
			r.Get("/", catalogHandler.ListBenefits)
			r.Post("/", catalogHandler.CreateBenefit)
		})

		// Report lifecycle and interactions
		r.Route("/reports", func(r chi.Router) {
			r.Post("/", reportHandler.File)
			r.Get("/", reportHandler.List)
			r.Get("/{id}", reportHandler.Get)
			r.Post("/{id}/status", reportHandler.Transition)
			r.Post("/{id}/edit", reportHandler.Edit)
			r.Get("/{id}/history", reportHandler.History)
			r.Post("/{id}/interactions", interactionHandler.Record)
			r.Get("/{id}/interactions", interactionHandler.List)
			r.Post("/{id}/media", interactionHandler.AttachMedia)
			r.Get("/{id}/media", interactionHandler.ListMedia)
		})

		// Analytics endpoints (operational signal — token required)
		r.Route("/analytics", func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.JWTSecret))
			r.Get("/interaction-counts", analyticsHandler.InteractionCounts)
			r.Get("/productivity", analyticsHandler.Productivity)
			r.Get("/quality", analyticsHandler.Quality)
			r.Get("/experts", analyticsHandler.Experts)
			r.Get("/critical", analyticsHandler.Critical)
			r.Get("/hotspots", analyticsHandler.Hotspots)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}
