package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forgefit/forge/internal/telemetry/metrics"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type stubRateLimiter struct {
	allowed int
}

func (s *stubRateLimiter) Allow(_ context.Context, _ string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	return &redis_rate.Result{
		Allowed:    s.allowed,
		RetryAfter: 3 * time.Second,
	}, nil
}

func TestRateLimit_Allowed(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	handler := RateLimit(&stubRateLimiter{allowed: 1}, "parse", 15, metricsManager)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/nutrition/parse", nil)
	handler(next).ServeHTTP(rr, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))
}

func TestRateLimit_Limited(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	handler := RateLimit(&stubRateLimiter{allowed: 0}, "parse", 15, metricsManager)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/nutrition/parse", nil)
	handler(next).ServeHTTP(rr, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))
}
