package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oncology-cds-engine/internal/domain"
	"github.com/oncology-cds-engine/internal/feedback"
	"github.com/oncology-cds-engine/internal/middleware"
	"github.com/oncology-cds-engine/internal/service"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// protocolSummary is the list view of a catalogue protocol.
type protocolSummary struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	CancerType    string               `json:"cancer_type"`
	Stages        []string             `json:"stages"`
	TreatmentType domain.TreatmentType `json:"treatment_type"`
	EvidenceLevel domain.EvidenceLevel `json:"evidence_level"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"timestamp":      time.Now().UTC(),
		"uptime":         time.Since(s.started).Round(time.Second).String(),
		"engine_version": service.EngineVersion,
		"protocols":      s.engine.Catalogue().Len(),
	})
}

func (s *Server) handleListProtocols(c *gin.Context) {
	cancerType := c.Query("cancer_type")

	summaries := []protocolSummary{}
	for _, p := range s.engine.Catalogue().Entries() {
		if cancerType != "" && !service.CancerTypeMatches(p.CancerType, cancerType) {
			continue
		}
		summaries = append(summaries, protocolSummary{
			ID:            p.ID,
			Name:          p.Name,
			CancerType:    p.CancerType,
			Stages:        append([]string(nil), p.Stages...),
			TreatmentType: p.TreatmentType,
			EvidenceLevel: p.EvidenceLevel,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"protocols": summaries,
		"count":     len(summaries),
	})
}

func (s *Server) handleGetProtocol(c *gin.Context) {
	p, err := s.engine.Catalogue().Get(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleRecommendation(c *gin.Context) {
	var input domain.DecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrInvalidInput,
			"request body is not a valid decision input",
			err.Error(),
			c.GetString(middleware.CorrelationIDKey),
		))
		return
	}

	if explain, _ := strconv.ParseBool(c.Query("explain")); explain {
		trace, err := s.engine.Explain(c.Request.Context(), &input)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, trace)
		return
	}

	output, err := s.engine.GenerateRecommendation(c.Request.Context(), &input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (s *Server) handleSaveFeedback(c *gin.Context) {
	if !s.requireFeedback(c) {
		return
	}

	var fb feedback.Feedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrInvalidInput, "request body is not valid feedback", err.Error(), c.GetString(middleware.CorrelationIDKey)))
		return
	}
	if err := fb.Validate(); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrValidation, err.Error(), "", c.GetString(middleware.CorrelationIDKey)))
		return
	}

	if err := s.feedback.Save(c.Request.Context(), &fb); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fb)
}

func (s *Server) handleListFeedback(c *gin.Context) {
	if !s.requireFeedback(c) {
		return
	}

	limit := queryInt(c, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := s.feedback.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	total, err := s.feedback.Count(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": entries,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func (s *Server) handleFeedbackSummary(c *gin.Context) {
	if !s.requireFeedback(c) {
		return
	}
	summary, err := s.feedback.Summarize(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleCacheStats(c *gin.Context) {
	resultCache := s.engine.Cache()
	c.JSON(http.StatusOK, gin.H{
		"stats":     resultCache.Stats(),
		"hit_ratio": resultCache.HitRatio(),
		"ttl":       resultCache.TTL().String(),
	})
}

func (s *Server) handleClearCache(c *gin.Context) {
	if err := s.engine.Cache().Clear(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	s.log.WithField("correlation_id", c.GetString(middleware.CorrelationIDKey)).Info("Result cache cleared")
	c.Status(http.StatusNoContent)
}

func (s *Server) requireFeedback(c *gin.Context) bool {
	if s.feedback != nil {
		return true
	}
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, domain.NewAPIError(
		domain.ErrDatabaseError, "feedback store is not configured", "", c.GetString(middleware.CorrelationIDKey)))
	return false
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

