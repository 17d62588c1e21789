package prober

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GeoProxyPlatform/pkg/logger"
)

func newTestLogger(t *testing.T) logger.Logger {
	log, err := logger.NewLogger("development", "debug", "gateway-test")
	require.NoError(t, err)
	return log
}

func TestProber_Probe_Healthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := NewProber(5*time.Second, newTestLogger(t), nil)
	result := p.Probe(context.Background(), "europe", server.URL)

	assert.True(t, result.IsHealthy)
	assert.Equal(t, "europe", result.Region)
	assert.Equal(t, server.URL, result.Endpoint)
	assert.Greater(t, result.ResponseTime, time.Duration(0))
	assert.False(t, result.CheckedAt.IsZero())
}

func TestProber_Probe_UnhealthyStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{name: "server error", statusCode: http.StatusInternalServerError},
		{name: "not found", statusCode: http.StatusNotFound},
		{name: "redirect", statusCode: http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			p := NewProber(5*time.Second, newTestLogger(t), nil)
			result := p.Probe(context.Background(), "asia", server.URL)

			assert.False(t, result.IsHealthy)
			assert.Greater(t, result.ResponseTime, time.Duration(0))
		})
	}
}

func TestProber_Probe_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // закрываем сразу, endpoint недоступен

	p := NewProber(time.Second, newTestLogger(t), nil)
	result := p.Probe(context.Background(), "us-east", server.URL)

	assert.False(t, result.IsHealthy)
	assert.Equal(t, "us-east", result.Region)
	assert.False(t, result.CheckedAt.IsZero())
}

func TestProber_Probe_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := NewProber(50*time.Millisecond, newTestLogger(t), nil)
	result := p.Probe(context.Background(), "us-west", server.URL)

	assert.False(t, result.IsHealthy)
	assert.GreaterOrEqual(t, result.ResponseTime, 50*time.Millisecond)
}

func TestProber_SetTimeout(t *testing.T) {
	p := NewProber(5*time.Second, newTestLogger(t), nil)
	p.SetTimeout(10 * time.Second)
	assert.Equal(t, 10*time.Second, p.client.Timeout)
}
