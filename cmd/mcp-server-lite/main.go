// Package main provides the stdio MCP entry point for the oncology recommendation engine.
// It requires no external databases: results are cached in memory and feedback is kept
// in SQLite.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/oncology-cds-engine/internal/config"
	"github.com/oncology-cds-engine/internal/mcp"
	"github.com/oncology-cds-engine/internal/setup"
)

func main() {
	// Print the MCP client configuration entry for this binary
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		cfg := config.LoadLiteConfig()
		if err := setup.Print(os.Stdout, setup.Options{DataDir: cfg.DataDir, CataloguePath: cfg.CataloguePath}); err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		return
	}

	cfg := config.LoadLiteConfig()

	// stdout carries the MCP stream, so logs go to stderr.
	log.SetOutput(os.Stderr)
	log.Printf("Data directory: %s", cfg.DataDir)

	server, err := mcp.NewLiteServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server failed: %v\n", err)
		return
	}

	log.Println("Oncology recommendation MCP server (lite) stopped")
}
