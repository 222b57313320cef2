package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contact-log-api/internal/dto"
)

func TestMetricsServiceExposesEntryCounters(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/student/entries", http.StatusOK, 15*time.Millisecond)
	m.RecordSubmission(dto.SubmitOutcomeEditLocked)
	m.RecordReview(true)
	m.RecordUnlocks(3)
	m.RecordUnlocks(0)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.submissions.WithLabelValues("EDIT_LOCKED")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.unlocks))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `entry_reviews_total{result="transitioned"} 1`))
	assert.True(t, strings.Contains(body, `http_requests_total{method="POST",path="/api/v1/student/entries",status="200"} 1`))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.RecordSubmission(dto.SubmitOutcomeCreated)
		m.RecordSubmitRetry()
		m.RecordReview(false)
		m.RecordUnlocks(1)
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
