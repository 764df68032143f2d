package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"moviehouse/internal/config"
	"moviehouse/internal/core"
	"moviehouse/internal/handlers"
	"moviehouse/internal/utils"
)

func main() {
	configPath := flag.String("config", "config.yml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := os.MkdirAll(cfg.App.DataPath, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize logger to write to both file and console
	logFile, err := os.OpenFile(filepath.Join(cfg.App.DataPath, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()

	multiWriter := io.MultiWriter(os.Stdout, logFile)
	logger := utils.NewLogger(cfg.App.Debug, multiWriter)

	// Create manager
	manager := core.NewManager(cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reload settings when the config file changes
	err = config.Watch(ctx, *configPath, manager.ApplyConfig, func(err error) {
		logger.Error("Config reload failed:", err)
	})
	if err != nil {
		logger.Error("Config hot reload disabled:", err)
	}

	// Start web server
	server := handlers.NewServer(cfg, manager, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Server failed to start:", err)
		}
	}()

	if err := manager.StartScheduler(); err != nil {
		logger.Fatal("Failed to start scheduler:", err)
	}

	logger.Info("MovieHouse started successfully on port", cfg.App.Port)

	// Wait for interrupt
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed:", err)
	}
	manager.Stop()
}
