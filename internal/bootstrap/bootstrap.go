// Package bootstrap assembles the engine and its collaborators from the application
// configuration. It is shared by the HTTP server and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oncology-cds-engine/internal/cache"
	"github.com/oncology-cds-engine/internal/catalogue"
	"github.com/oncology-cds-engine/internal/database"
	"github.com/oncology-cds-engine/internal/domain"
	"github.com/oncology-cds-engine/internal/feedback"
	"github.com/oncology-cds-engine/internal/repository"
	"github.com/oncology-cds-engine/internal/service"
)

// Runtime holds the engine together with the resources that must be released on exit.
type Runtime struct {
	Engine   *service.Engine
	Feedback feedback.Store
	Logger   *logrus.Logger

	closers []func() error
}

// Close releases every resource opened by Build, in reverse order.
func (r *Runtime) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

// Options selects optional parts of the runtime.
type Options struct {
	// WithFeedback opens the configured feedback store.
	WithFeedback bool
}

// NewLogger configures a logger from the logging settings.
func NewLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	logger.SetOutput(out)

	return logger
}

// Build loads the catalogue, creates the result cache and the engine, and optionally
// opens the feedback store. On error every resource opened so far is released.
func Build(ctx context.Context, cfg *domain.Config, logger *logrus.Logger, opts Options) (rt *Runtime, err error) {
	rt = &Runtime{Logger: logger}
	defer func() {
		if err != nil {
			_ = rt.Close()
			rt = nil
		}
	}()

	cat, err := rt.loadCatalogue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	resultCache, err := rt.newResultCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	rt.Engine, err = service.NewEngine(logger, cat, resultCache, service.EngineOptions{})
	if err != nil {
		return nil, fmt.Errorf("creating recommendation engine: %w", err)
	}

	if opts.WithFeedback {
		store, err := feedback.Open(cfg.Feedback)
		if err != nil {
			return nil, fmt.Errorf("opening feedback store: %w", err)
		}
		rt.Feedback = store
		rt.closers = append(rt.closers, store.Close)
	}

	return rt, nil
}

// ProtocolSource returns the catalogue source selected by the configuration. For the
// postgres source the returned close function releases the pool.
func ProtocolSource(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (domain.ProtocolSource, func(), error) {
	switch cfg.Catalogue.Source {
	case "", "builtin":
		return catalogue.BuiltinSource{}, func() {}, nil
	case "file":
		return catalogue.FileSource{Path: cfg.Catalogue.Path}, func() {}, nil
	case "postgres":
		db, err := database.NewConnection(ctx, database.FromSettings(cfg.Database), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to catalogue database: %w", err)
		}
		return repository.NewProtocolRepository(db.Pool, logger), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("invalid catalogue source: %s", cfg.Catalogue.Source)
	}
}

func (rt *Runtime) loadCatalogue(ctx context.Context, cfg *domain.Config) (*catalogue.Catalogue, error) {
	source, closeSource, err := ProtocolSource(ctx, cfg, rt.Logger)
	if err != nil {
		return nil, err
	}
	// The catalogue is immutable once loaded, so the source is not needed afterwards.
	defer closeSource()

	return catalogue.Load(ctx, source, rt.Logger)
}

func (rt *Runtime) newResultCache(cfg domain.CacheConfig) (*cache.ResultCache, error) {
	opts := cache.Options{
		TTL:        cfg.TTL,
		MaxEntries: cfg.MaxEntries,
	}

	if cfg.RedisEnabled {
		tier, err := cache.NewRedisTier(cfg, rt.Logger)
		if err != nil {
			return nil, fmt.Errorf("creating redis cache tier: %w", err)
		}
		rt.closers = append(rt.closers, tier.Close)
		opts.Remote = tier
	}

	resultCache, err := cache.NewResultCache(rt.Logger, opts)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	return resultCache, nil
}
