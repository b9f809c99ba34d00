package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncology-cds-engine/internal/catalogue"
	"github.com/oncology-cds-engine/internal/domain"
	"github.com/oncology-cds-engine/internal/feedback"
	"github.com/oncology-cds-engine/internal/service"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig() *domain.Config {
	return &domain.Config{
		Server:  domain.ServerConfig{RequestTimeout: 5 * time.Second},
		Logging: domain.LoggingConfig{Level: "info"},
	}
}

func newTestServer(t *testing.T, withFeedback bool) *Server {
	t.Helper()
	logger := quietLogger()

	cat, err := catalogue.New(catalogue.Builtin())
	require.NoError(t, err)
	engine, err := service.NewEngine(logger, cat, nil, service.EngineOptions{})
	require.NoError(t, err)

	var store feedback.Store
	if withFeedback {
		sqlite, err := feedback.NewSQLiteStore(filepath.Join(t.TempDir(), "feedback.db"))
		require.NoError(t, err)
		t.Cleanup(func() { sqlite.Close() })
		store = sqlite
	}

	server, err := NewServer(testConfig(), engine, store, logger)
	require.NoError(t, err)
	gin.SetMode(gin.TestMode)
	return server
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func breastInput(score string) *domain.DecisionInput {
	return &domain.DecisionInput{
		PatientID: "patient-001",
		DiseaseStatus: &domain.DiseaseStatus{
			PrimaryDiagnosis: "Breast Cancer",
			Stage:            "II",
		},
		PerformanceStatus: &domain.PerformanceStatus{
			Scale: domain.ECOG,
			Score: score,
		},
	}
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, nil, nil, quietLogger())
	assert.Error(t, err)
	_, err = NewServer(testConfig(), nil, nil, quietLogger())
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, service.EngineVersion, body["engine_version"])
	assert.EqualValues(t, len(catalogue.Builtin()), body["protocols"])
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestProtocols(t *testing.T) {
	s := newTestServer(t, false)

	t.Run("list all", func(t *testing.T) {
		w := doJSON(t, s, http.MethodGet, "/api/v1/protocols", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Protocols []protocolSummary `json:"protocols"`
			Count     int               `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, len(catalogue.Builtin()), body.Count)
	})

	t.Run("filter by cancer type", func(t *testing.T) {
		w := doJSON(t, s, http.MethodGet, "/api/v1/protocols?cancer_type=Lung%20Adenocarcinoma", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Protocols []protocolSummary `json:"protocols"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotEmpty(t, body.Protocols)
		for _, p := range body.Protocols {
			assert.Equal(t, "Lung", p.CancerType)
		}
	})

	t.Run("get by id", func(t *testing.T) {
		w := doJSON(t, s, http.MethodGet, "/api/v1/protocols/"+catalogue.BreastACT, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var p domain.Protocol
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.Equal(t, catalogue.BreastACT, p.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := doJSON(t, s, http.MethodGet, "/api/v1/protocols/does-not-exist", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrProtocolNotFound)
	})
}

func TestRecommendation(t *testing.T) {
	s := newTestServer(t, false)

	t.Run("success", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPost, "/api/v1/recommendations", breastInput("1"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var out domain.DecisionOutput
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Equal(t, catalogue.BreastACT, out.Primary.ProtocolID)
		assert.Equal(t, 1, out.Primary.Priority)
		assert.NotEmpty(t, out.RecommendationID)
	})

	t.Run("explain", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPost, "/api/v1/recommendations?explain=true", breastInput("1"))
		require.Equal(t, http.StatusOK, w.Code)

		var trace service.Trace
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trace))
		assert.Equal(t, []string{catalogue.BreastACT}, trace.Eligible)
		assert.NotEmpty(t, trace.Excluded)
		require.NotNil(t, trace.Output)
	})

	t.Run("missing field is 400", func(t *testing.T) {
		input := breastInput("1")
		input.DiseaseStatus.Stage = ""
		w := doJSON(t, s, http.MethodPost, "/api/v1/recommendations", input)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrValidation, apiErr.Code)
		assert.Equal(t, "disease_status.stage", apiErr.Details)
		assert.Equal(t, w.Header().Get("X-Correlation-ID"), apiErr.RequestID)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrInvalidInput)
	})

	t.Run("no eligible protocol is 422", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPost, "/api/v1/recommendations", breastInput("4"))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrNoEligibleProtocol)
	})
}

func TestCacheEndpoints(t *testing.T) {
	s := newTestServer(t, false)

	doJSON(t, s, http.MethodPost, "/api/v1/recommendations", breastInput("1"))
	doJSON(t, s, http.MethodPost, "/api/v1/recommendations", breastInput("1"))

	w := doJSON(t, s, http.MethodGet, "/api/v1/cache/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Stats struct {
			Hits    int64 `json:"hits"`
			Misses  int64 `json:"misses"`
			Entries int   `json:"entries"`
		} `json:"stats"`
		HitRatio float64 `json:"hit_ratio"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body.Stats.Hits)
	assert.EqualValues(t, 1, body.Stats.Misses)
	assert.Equal(t, 1, body.Stats.Entries)
	assert.InDelta(t, 0.5, body.HitRatio, 1e-9)

	w = doJSON(t, s, http.MethodDelete, "/api/v1/cache", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, s.engine.Cache().Len())
}

func TestFeedback(t *testing.T) {
	s := newTestServer(t, true)

	fb := feedback.Feedback{
		RecommendationID:    "rec-1",
		Clinician:           "dr.lee",
		SuggestedProtocolID: catalogue.BreastACT,
		Decision:            feedback.DecisionAccepted,
		ConfidenceScore:     95,
	}
	w := doJSON(t, s, http.MethodPost, "/api/v1/feedback", fb)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	invalid := fb
	invalid.Decision = "maybe"
	w = doJSON(t, s, http.MethodPost, "/api/v1/feedback", invalid)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/feedback?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Feedback []feedback.Feedback `json:"feedback"`
		Total    int64               `json:"total"`
		Limit    int                 `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, 10, list.Limit)
	require.Len(t, list.Feedback, 1)
	assert.Equal(t, "dr.lee", list.Feedback[0].Clinician)

	w = doJSON(t, s, http.MethodGet, "/api/v1/feedback/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary feedback.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.InDelta(t, 1.0, summary.AcceptanceRate, 1e-9)
}

func TestFeedback_NotConfigured(t *testing.T) {
	s := newTestServer(t, false)

	w := doJSON(t, s, http.MethodGet, "/api/v1/feedback", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRateLimit(t *testing.T) {
	logger := quietLogger()
	cat, err := catalogue.New(catalogue.Builtin())
	require.NoError(t, err)
	engine, err := service.NewEngine(logger, cat, nil, service.EngineOptions{})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.RateLimit = domain.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1}
	s, err := NewServer(cfg, engine, nil, logger)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doJSON(t, s, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(t, s, http.MethodGet, "/health", nil).Code)
}
