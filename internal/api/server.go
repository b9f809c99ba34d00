// Package api exposes the recommendation engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oncology-cds-engine/internal/domain"
	"github.com/oncology-cds-engine/internal/feedback"
	"github.com/oncology-cds-engine/internal/middleware"
	"github.com/oncology-cds-engine/internal/service"
)

// Server represents the HTTP server
type Server struct {
	config   *domain.Config
	engine   *service.Engine
	feedback feedback.Store
	log      *logrus.Logger
	router   *gin.Engine
	server   *http.Server
	started  time.Time
}

// NewServer creates a new HTTP server instance. The feedback store is optional; without
// it the feedback routes answer 503.
func NewServer(config *domain.Config, engine *service.Engine, store feedback.Store, logger *logrus.Logger) (*Server, error) {
	if config == nil {
		return nil, errors.New("configuration is required")
	}
	if engine == nil {
		return nil, errors.New("recommendation engine is required")
	}

	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.AuditLogger(logger))
	router.Use(middleware.RequestTimeout(config.Server.RequestTimeout))

	if config.RateLimit.Enabled {
		limiter, err := middleware.NewRateLimiter(config.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("creating rate limiter: %w", err)
		}
		router.Use(limiter.Middleware())
	}

	s := &Server{
		config:   config,
		engine:   engine,
		feedback: store,
		log:      logger,
		router:   router,
		started:  time.Now(),
	}
	s.setupRoutes()

	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		var err error
		if cfg.TLSEnabled {
			err = s.server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.log.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/protocols", s.handleListProtocols)
		v1.GET("/protocols/:id", s.handleGetProtocol)
		v1.POST("/recommendations", s.handleRecommendation)
		v1.POST("/feedback", s.handleSaveFeedback)
		v1.GET("/feedback", s.handleListFeedback)
		v1.GET("/feedback/summary", s.handleFeedbackSummary)
		v1.GET("/cache/stats", s.handleCacheStats)
		v1.DELETE("/cache", s.handleClearCache)
	}
}

// respondError writes the APIError envelope for err.
func (s *Server) respondError(c *gin.Context, err error) {
	status, apiErr := classify(err, c.GetString(middleware.CorrelationIDKey))
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("correlation_id", apiErr.RequestID).Error("Request failed")
	}
	c.AbortWithStatusJSON(status, apiErr)
}

func classify(err error, requestID string) (int, *domain.APIError) {
	var validationErr *domain.ValidationError
	var noEligible *domain.NoEligibleProtocolError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, domain.NewAPIError(domain.ErrValidation, validationErr.Error(), validationErr.Field, requestID)
	case errors.As(err, &noEligible):
		return http.StatusUnprocessableEntity, domain.NewAPIError(domain.ErrNoEligibleProtocol, noEligible.Error(), string(noEligible.Line), requestID)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.NewAPIError(domain.ErrProtocolNotFound, err.Error(), "", requestID)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, domain.NewAPIError(domain.ErrInternalServer, "request timed out", "", requestID)
	default:
		return http.StatusInternalServerError, domain.NewAPIError(domain.ErrInternalServer, "internal error", "", requestID)
	}
}
