package prober

import (
	"context"
	"net/http"
	"time"

	"GeoProxyPlatform/internal/domain"
	"GeoProxyPlatform/internal/metrics"
	"GeoProxyPlatform/pkg/logger"
)

// Prober выполняет проверки доступности региональных endpoint'ов
// Проверка тотальна: любой сбой (таймаут, отказ соединения, неуспешный
// статус) превращается в результат с IsHealthy=false, а не в ошибку
type Prober struct {
	client  *http.Client
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewProber создает новый Prober с заданным таймаутом одной проверки
func NewProber(timeout time.Duration, log logger.Logger, m *metrics.Metrics) *Prober {
	return &Prober{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:  log,
		metrics: m,
	}
}

// Probe проверяет доступность одного endpoint'а через GET {endpoint}/health
// Endpoint считается доступным только при статусе 2xx
func (p *Prober) Probe(ctx context.Context, region, endpoint string) domain.HealthCheckResult {
	result := domain.HealthCheckResult{
		Region:   region,
		Endpoint: endpoint,
	}

	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/health", nil)
	if err != nil {
		result.ResponseTime = time.Since(startTime)
		result.CheckedAt = time.Now().UTC()
		p.logger.Error("failed to create health check request",
			logger.String("region", region),
			logger.String("endpoint", endpoint),
			logger.Error(err))
		p.metrics.ObserveProbe(region, false, result.ResponseTime)
		return result
	}

	resp, err := p.client.Do(req)
	result.ResponseTime = time.Since(startTime)
	result.CheckedAt = time.Now().UTC()

	if err != nil {
		p.logger.Error("health check failed",
			logger.String("region", region),
			logger.String("endpoint", endpoint),
			logger.Error(err))
		p.metrics.ObserveProbe(region, false, result.ResponseTime)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Error("health check returned unexpected status",
			logger.String("region", region),
			logger.String("endpoint", endpoint),
			logger.Int("status_code", resp.StatusCode))
		p.metrics.ObserveProbe(region, false, result.ResponseTime)
		return result
	}

	result.IsHealthy = true
	p.metrics.ObserveProbe(region, true, result.ResponseTime)
	return result
}

// SetTimeout устанавливает таймаут HTTP клиента
func (p *Prober) SetTimeout(timeout time.Duration) {
	p.client.Timeout = timeout
}
