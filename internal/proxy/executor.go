package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"GeoProxyPlatform/internal/domain"
	"GeoProxyPlatform/internal/metrics"
	"GeoProxyPlatform/pkg/errors"
	"GeoProxyPlatform/pkg/logger"
)

// Executor пересылает запрос выбранному endpoint'у региона
type Executor struct {
	client  *http.Client
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewExecutor создает новый Executor с заданным таймаутом пересылки
func NewExecutor(timeout time.Duration, log logger.Logger, m *metrics.Metrics) *Executor {
	return &Executor{
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

// forwardRequest тело запроса к региональному endpoint'у
type forwardRequest struct {
	URL string `json:"url"`
}

// forwardResponse тело ответа endpoint'а
// Поля указатели: отсутствие любого из них означает некорректный ответ
type forwardResponse struct {
	Result   *string `json:"result"`
	PublicIP *string `json:"public_ip"`
	DeviceID *string `json:"device_id"`
}

// Forward отправляет POST {endpoint}/fetch с целевым URL и разбирает ответ
// Любой сбой пересылки (сеть, таймаут, неуспешный статус, некорректное
// тело) возвращается как ErrUpstream
func (e *Executor) Forward(ctx context.Context, region, endpoint, targetURL string) (*domain.ProxyResult, error) {
	payload, err := json.Marshal(forwardRequest{URL: targetURL})
	if err != nil {
		e.metrics.ObserveForward(region, false)
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode proxy request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/fetch", bytes.NewReader(payload))
	if err != nil {
		e.metrics.ObserveForward(region, false)
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create proxy request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("proxy fetch failed",
			logger.String("region", region),
			logger.String("endpoint", endpoint),
			logger.Error(err))
		e.metrics.ObserveForward(region, false)
		return nil, errors.Wrap(err, errors.ErrUpstream,
			fmt.Sprintf("proxy request failed in %s", region))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Error("proxy fetch returned unexpected status",
			logger.String("region", region),
			logger.String("endpoint", endpoint),
			logger.Int("status_code", resp.StatusCode))
		e.metrics.ObserveForward(region, false)
		return nil, errors.New(errors.ErrUpstream,
			fmt.Sprintf("proxy request failed in %s", region)).
			WithDetails(fmt.Sprintf("endpoint returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.metrics.ObserveForward(region, false)
		return nil, errors.Wrap(err, errors.ErrUpstream,
			fmt.Sprintf("failed to read proxy response in %s", region))
	}

	var parsed forwardResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		e.metrics.ObserveForward(region, false)
		return nil, errors.Wrap(err, errors.ErrUpstream,
			fmt.Sprintf("invalid proxy response in %s", region))
	}

	if parsed.Result == nil || parsed.PublicIP == nil || parsed.DeviceID == nil {
		e.metrics.ObserveForward(region, false)
		return nil, errors.New(errors.ErrUpstream,
			fmt.Sprintf("incomplete proxy response in %s", region))
	}

	e.metrics.ObserveForward(region, true)

	return &domain.ProxyResult{
		Result:   *parsed.Result,
		PublicIP: *parsed.PublicIP,
		DeviceID: *parsed.DeviceID,
	}, nil
}

// SetTimeout устанавливает таймаут HTTP клиента
func (e *Executor) SetTimeout(timeout time.Duration) {
	e.client.Timeout = timeout
}
