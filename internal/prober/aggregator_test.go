package prober

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GeoProxyPlatform/internal/domain"
	"GeoProxyPlatform/internal/registry"
	"GeoProxyPlatform/pkg/errors"
)

// fakeProber возвращает заранее заданные результаты по endpoint'у
type fakeProber struct {
	mu      sync.Mutex
	healthy map[string]bool
	delays  map[string]time.Duration
	calls   []string
}

func (f *fakeProber) Probe(ctx context.Context, region, endpoint string) domain.HealthCheckResult {
	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	f.mu.Unlock()

	if d, ok := f.delays[endpoint]; ok {
		time.Sleep(d)
	}

	return domain.HealthCheckResult{
		Region:       region,
		Endpoint:     endpoint,
		IsHealthy:    f.healthy[endpoint],
		ResponseTime: 100 * time.Millisecond,
		CheckedAt:    time.Now().UTC(),
	}
}

func TestAggregator_Aggregate_AllHealthy(t *testing.T) {
	reg := registry.NewWithRegions(map[string][]string{
		"test": {"http://a", "http://b", "http://c"},
	})
	fake := &fakeProber{healthy: map[string]bool{
		"http://a": true,
		"http://b": true,
		"http://c": true,
	}}

	agg := NewAggregator(reg, fake, newTestLogger(t))
	result, err := agg.Aggregate(context.Background(), "test")

	require.NoError(t, err)
	assert.True(t, result.Status.IsHealthy)
	assert.Equal(t, 3, result.Status.HealthyEndpoints)
	assert.Equal(t, 3, result.Status.TotalEndpoints)
	assert.InDelta(t, 0.1, result.Status.AvgResponseTime, 0.001)
	assert.Len(t, result.Results, 3)
}

func TestAggregator_Aggregate_PartiallyHealthy(t *testing.T) {
	reg := registry.NewWithRegions(map[string][]string{
		"test": {"http://a", "http://b"},
	})
	fake := &fakeProber{healthy: map[string]bool{
		"http://a": true,
		"http://b": false,
	}}

	agg := NewAggregator(reg, fake, newTestLogger(t))
	result, err := agg.Aggregate(context.Background(), "test")

	require.NoError(t, err)
	assert.True(t, result.Status.IsHealthy)
	assert.Equal(t, 1, result.Status.HealthyEndpoints)
	assert.Equal(t, 2, result.Status.TotalEndpoints)
}

func TestAggregator_Aggregate_NoneHealthy(t *testing.T) {
	reg := registry.NewWithRegions(map[string][]string{
		"test": {"http://a", "http://b"},
	})
	fake := &fakeProber{healthy: map[string]bool{}}

	agg := NewAggregator(reg, fake, newTestLogger(t))
	result, err := agg.Aggregate(context.Background(), "test")

	require.NoError(t, err)
	assert.False(t, result.Status.IsHealthy)
	assert.Equal(t, 0, result.Status.HealthyEndpoints)
	// Среднее время ответа учитывает и неуспешные проверки
	assert.InDelta(t, 0.1, result.Status.AvgResponseTime, 0.001)
}

func TestAggregator_Aggregate_UnknownRegion(t *testing.T) {
	reg := registry.NewWithRegions(map[string][]string{
		"test": {"http://a"},
	})
	agg := NewAggregator(reg, &fakeProber{}, newTestLogger(t))

	result, err := agg.Aggregate(context.Background(), "unknown")

	require.Error(t, err)
	assert.Nil(t, result)

	appErr, ok := err.(*errors.Error)
	require.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "available regions")
	assert.Contains(t, appErr.Details, "test")
}

func TestAggregator_Aggregate_WaitsForAllProbes(t *testing.T) {
	reg := registry.NewWithRegions(map[string][]string{
		"test": {"http://fast", "http://slow"},
	})
	fake := &fakeProber{
		healthy: map[string]bool{"http://fast": true, "http://slow": true},
		delays:  map[string]time.Duration{"http://slow": 150 * time.Millisecond},
	}

	agg := NewAggregator(reg, fake, newTestLogger(t))

	start := time.Now()
	result, err := agg.Aggregate(context.Background(), "test")
	elapsed := time.Since(start)

	require.NoError(t, err)
	// Агрегация ждет самую медленную проверку
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Equal(t, 2, result.Status.HealthyEndpoints)
	assert.Len(t, fake.calls, 2)
}

func TestAggregator_Aggregate_ResultsKeepEndpointOrder(t *testing.T) {
	reg := registry.NewWithRegions(map[string][]string{
		"test": {"http://a", "http://b", "http://c"},
	})
	fake := &fakeProber{
		healthy: map[string]bool{"http://b": true},
		delays:  map[string]time.Duration{"http://a": 50 * time.Millisecond},
	}

	agg := NewAggregator(reg, fake, newTestLogger(t))
	result, err := agg.Aggregate(context.Background(), "test")

	require.NoError(t, err)
	require.Len(t, result.Results, 3)
	assert.Equal(t, "http://a", result.Results[0].Endpoint)
	assert.Equal(t, "http://b", result.Results[1].Endpoint)
	assert.Equal(t, "http://c", result.Results[2].Endpoint)
}
