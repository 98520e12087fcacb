package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/firegrid/hydrant-reach/internal/api"
	"github.com/firegrid/hydrant-reach/internal/config"
	"github.com/firegrid/hydrant-reach/internal/elevation"
	"github.com/firegrid/hydrant-reach/internal/logging"
	"github.com/firegrid/hydrant-reach/internal/overlay"
	"github.com/firegrid/hydrant-reach/internal/rangefinder"
	"github.com/firegrid/hydrant-reach/internal/render"
	"github.com/firegrid/hydrant-reach/internal/repository"
	"github.com/firegrid/hydrant-reach/internal/roadnet"
	"github.com/firegrid/hydrant-reach/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "workers", cfg.WorkerCount())

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	provider := roadnet.NewOverpassProvider(cfg.Overpass.URL, cfg.Overpass.Timeout)
	elevations := elevation.NewClient(cfg.Elevation.URL, cfg.Elevation.Timeout)
	merger := rangefinder.NewMerger(provider, overlay.NewSegmentEngine(), elevations, cfg.WorkerCount())
	sessions := session.NewCache(cfg.Session.TTL, cfg.Session.MaxBytes)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(5)) // 5 req/s global limit

	handler := api.NewHandler(merger, render.NewLeaflet(), sessions, db, cfg.Limits)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
