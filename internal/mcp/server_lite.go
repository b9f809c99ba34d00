// Package mcp exposes the recommendation engine as MCP tools over stdio.
// The lite server needs no external services: it serves the builtin or a file catalogue,
// keeps results in memory and records feedback in SQLite.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/oncology-cds-engine/internal/cache"
	"github.com/oncology-cds-engine/internal/catalogue"
	litecfg "github.com/oncology-cds-engine/internal/config"
	"github.com/oncology-cds-engine/internal/domain"
	"github.com/oncology-cds-engine/internal/feedback"
	"github.com/oncology-cds-engine/internal/service"
)

// ServerName identifies the lite server to MCP clients.
const ServerName = "oncocds-mcp-lite"

// LiteServer is a lightweight MCP server that requires no external databases.
type LiteServer struct {
	config        *litecfg.LiteConfig
	mcpServer     *mcp.Server
	engine        *service.Engine
	feedbackStore feedback.Store
	logger        *logrus.Logger
}

// LiteServerOption is a functional option for LiteServer.
type LiteServerOption func(*LiteServer) error

// WithFeedbackStore sets a custom feedback store.
func WithFeedbackStore(store feedback.Store) LiteServerOption {
	return func(s *LiteServer) error {
		s.feedbackStore = store
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) LiteServerOption {
	return func(s *LiteServer) error {
		s.logger = logger
		return nil
	}
}

// WithEngine replaces the engine built from the configuration.
func WithEngine(engine *service.Engine) LiteServerOption {
	return func(s *LiteServer) error {
		if engine == nil {
			return fmt.Errorf("engine must not be nil")
		}
		s.engine = engine
		return nil
	}
}

// NewLiteServer creates a new lightweight MCP server instance.
func NewLiteServer(cfg *litecfg.LiteConfig, opts ...LiteServerOption) (*LiteServer, error) {
	server := &LiteServer{
		config: cfg,
		logger: logrus.New(),
	}

	if cfg.LogFormat == "text" {
		server.logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		server.logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		server.logger.SetLevel(level)
	}

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		engine, err := newLiteEngine(cfg, server.logger)
		if err != nil {
			return nil, err
		}
		server.engine = engine
	}

	if server.feedbackStore == nil {
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		store, err := feedback.NewSQLiteStore(cfg.FeedbackDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create feedback store: %w", err)
		}
		server.feedbackStore = store
	}

	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: service.EngineVersion,
	}, nil)

	tools := newToolSet(server.engine, server.feedbackStore, server.logger)
	tools.register(server.mcpServer)

	server.logger.WithFields(logrus.Fields{
		"protocols": server.engine.Catalogue().Len(),
		"tools":     len(tools.definitions()),
	}).Info("Lite server initialized successfully")
	return server, nil
}

func newLiteEngine(cfg *litecfg.LiteConfig, logger *logrus.Logger) (*service.Engine, error) {
	var source domain.ProtocolSource = catalogue.BuiltinSource{}
	if cfg.CataloguePath != "" {
		source = catalogue.FileSource{Path: cfg.CataloguePath}
	}

	cat, err := catalogue.Load(context.Background(), source, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load protocol catalogue: %w", err)
	}

	resultCache, err := cache.NewResultCache(logger, cache.Options{
		TTL:        cfg.CacheTTL,
		MaxEntries: cfg.CacheMaxItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	engine, err := service.NewEngine(logger, cat, resultCache, service.EngineOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create recommendation engine: %w", err)
	}
	return engine, nil
}

// Start serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *LiteServer) Start(ctx context.Context) error {
	s.logger.Info("Starting oncology recommendation MCP server (lite)")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Close cleans up server resources.
func (s *LiteServer) Close() error {
	if s.feedbackStore != nil {
		if err := s.feedbackStore.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close feedback store")
			return err
		}
	}
	return nil
}

// Engine returns the recommendation engine.
func (s *LiteServer) Engine() *service.Engine {
	return s.engine
}

// GetFeedbackStore returns the feedback store for external access.
func (s *LiteServer) GetFeedbackStore() feedback.Store {
	return s.feedbackStore
}
