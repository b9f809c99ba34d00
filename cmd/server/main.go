// Package main is the HTTP entry point for the oncology recommendation engine.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/oncology-cds-engine/internal/api"
	"github.com/oncology-cds-engine/internal/bootstrap"
	"github.com/oncology-cds-engine/internal/config"
)

func main() {
	configFile := flag.String("config", "", "path to config file (default: ./config.yaml)")
	flag.Parse()

	// Load configuration
	configManager, err := config.NewManager(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := bootstrap.NewLogger(cfg.Logging)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Build(ctx, cfg, logger, bootstrap.Options{WithFeedback: true})
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialise recommendation engine")
	}
	defer rt.Close()

	server, err := api.NewServer(cfg, rt.Engine, rt.Feedback, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create HTTP server")
	}

	logger.WithFields(map[string]interface{}{
		"host":      cfg.Server.Host,
		"port":      cfg.Server.Port,
		"catalogue": cfg.Catalogue.Source,
	}).Info("Starting oncology recommendation server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		return
	}

	logger.Info("Server stopped")
}
