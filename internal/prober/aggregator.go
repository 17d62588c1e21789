package prober

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"GeoProxyPlatform/internal/domain"
	"GeoProxyPlatform/internal/registry"
	"GeoProxyPlatform/pkg/errors"
	"GeoProxyPlatform/pkg/logger"
)

// EndpointProber интерфейс одной проверки доступности
type EndpointProber interface {
	Probe(ctx context.Context, region, endpoint string) domain.HealthCheckResult
}

// Aggregation представляет результат опроса всех endpoint'ов региона
type Aggregation struct {
	Status  domain.RegionStatus
	Results []domain.HealthCheckResult
}

// Aggregator опрашивает все endpoint'ы региона и сводит результаты
// в статус региона. Опрос всегда полный: агрегация начинается только
// после завершения всех проверок
type Aggregator struct {
	registry *registry.Registry
	prober   EndpointProber
	logger   logger.Logger
}

// NewAggregator создает новый Aggregator
func NewAggregator(reg *registry.Registry, prober EndpointProber, log logger.Logger) *Aggregator {
	return &Aggregator{
		registry: reg,
		prober:   prober,
		logger:   log,
	}
}

// Aggregate опрашивает все endpoint'ы региона параллельно
// Возвращает ErrValidation для неизвестного региона
func (a *Aggregator) Aggregate(ctx context.Context, region string) (*Aggregation, error) {
	endpoints, ok := a.registry.Endpoints(region)
	if !ok {
		return nil, errors.New(errors.ErrValidation, "invalid region").
			WithDetails(fmt.Sprintf("available regions: %s", strings.Join(a.registry.Regions(), ", ")))
	}

	// Результаты складываются по индексу endpoint'а, порядок стабилен
	results := make([]domain.HealthCheckResult, len(endpoints))

	var wg sync.WaitGroup
	for i, endpoint := range endpoints {
		wg.Add(1)
		go func(i int, endpoint string) {
			defer wg.Done()
			results[i] = a.prober.Probe(ctx, region, endpoint)
		}(i, endpoint)
	}
	wg.Wait()

	status := buildStatus(region, results)

	a.logger.Debug("region status aggregated",
		logger.String("region", region),
		logger.Int("healthy_endpoints", status.HealthyEndpoints),
		logger.Int("total_endpoints", status.TotalEndpoints))

	return &Aggregation{Status: status, Results: results}, nil
}

// buildStatus сводит результаты проверок в статус региона
// Среднее время ответа считается по всем проверкам, включая неуспешные
func buildStatus(region string, results []domain.HealthCheckResult) domain.RegionStatus {
	status := domain.RegionStatus{
		Region:         region,
		TotalEndpoints: len(results),
	}

	if len(results) == 0 {
		status.LastChecked = time.Now().UTC()
		return status
	}

	var totalSeconds float64
	for _, r := range results {
		totalSeconds += r.ResponseTime.Seconds()
		if r.IsHealthy {
			status.HealthyEndpoints++
		}
	}

	status.IsHealthy = status.HealthyEndpoints > 0
	status.AvgResponseTime = totalSeconds / float64(len(results))
	status.LastChecked = results[0].CheckedAt

	return status
}
