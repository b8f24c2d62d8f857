package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/toxzak-svg/Axievale/internal/api"
	"github.com/toxzak-svg/Axievale/internal/config"
	"github.com/toxzak-svg/Axievale/internal/database"
	"github.com/toxzak-svg/Axievale/internal/services"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize database
	if err := database.Initialize(cfg.Database.SQLitePath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize services
	marketplace := services.NewMarketplaceService(cfg.Marketplace.GraphQLEndpoint, cfg.Marketplace.RequestsPerSec)
	insights := services.NewInsightService(cfg.Gemini.APIKey, cfg.Gemini.Model)
	valuation := services.NewValuationService(marketplace, insights, cfg.Valuation.BatchLimit)

	cache, err := services.NewValuationCache(cfg.Extension.CacheCapacity, cfg.Extension.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to create valuation cache: %v", err)
	}

	users := services.NewUserStore(database.GetDB(), cfg.Access.TrialRequests)
	policy := services.NewAccessPolicy(users, cfg.Access.RateWindow, cfg.Access.RateMax)
	pulse := services.NewPulseService(marketplace, cfg.Pulse.Interval)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start pulse worker in background
	go pulse.Start(ctx)

	// Setup router
	router := api.SetupRouter(cfg, marketplace, valuation, cache, policy, users)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the pulse worker
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
