package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phambaophuc/image-editor/internal/config"
	"github.com/phambaophuc/image-editor/internal/editor"
	"github.com/phambaophuc/image-editor/internal/http/handlers"
	"github.com/phambaophuc/image-editor/internal/http/routes"
	"github.com/phambaophuc/image-editor/internal/services/processor"
	"github.com/phambaophuc/image-editor/internal/services/storage"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	newLogger := zap.NewProduction
	if cfg.IsDevelopment() {
		newLogger = zap.NewDevelopment
	}
	logger, err := newLogger()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	filter, err := processor.ParseFilter(cfg.Editor.ResampleFilter)
	if err != nil {
		logger.Fatal("Invalid resample filter", zap.Error(err))
	}

	// Initialize services
	exportCache, err := storage.NewStorageService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize export cache", zap.Error(err))
	}
	defer exportCache.Close()

	manager := editor.NewManager(editor.Options{
		Filter:          filter,
		MinSize:         cfg.Editor.CropMinSize,
		MaxFileSize:     cfg.Storage.MaxFileSize,
		MaxPixels:       cfg.Editor.MaxPixels,
		DefaultFilename: cfg.Editor.DefaultFilename,
		DefaultQuality:  cfg.Editor.DefaultQuality,
		SmartSeed:       cfg.Editor.SmartSeed,
		IdleTimeout:     cfg.Editor.IdleTimeout,
	}, exportCache, logger)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go manager.Run(sweepCtx)

	// Initialize handlers
	editorHandler := handlers.NewEditorHandler(manager, exportCache, logger, cfg)

	router := routes.NewRouter(editorHandler, logger, cfg.Server.AllowedOrigins, cfg.Storage.MaxFileSize)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.String("env", cfg.Env),
			zap.String("export_cache", exportCache.Backend()),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopSweep()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
