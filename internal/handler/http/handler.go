package http

import (
	"context"
	"encoding/json"
	"net/http"

	"GeoProxyPlatform/internal/auth"
	"GeoProxyPlatform/internal/domain"
	"GeoProxyPlatform/internal/prober"
	"GeoProxyPlatform/pkg/errors"
	pkglogger "GeoProxyPlatform/pkg/logger"
)

// StatusAggregator опрашивает регион и сводит статус
type StatusAggregator interface {
	Aggregate(ctx context.Context, region string) (*prober.Aggregation, error)
}

// EndpointSelector выбирает endpoint из результатов проверок
type EndpointSelector interface {
	Pick(region string, results []domain.HealthCheckResult) (string, error)
}

// Forwarder пересылает запрос выбранному endpoint'у
type Forwarder interface {
	Forward(ctx context.Context, region, endpoint, targetURL string) (*domain.ProxyResult, error)
}

// TokenService выпускает токены и отдает их превью
type TokenService interface {
	Issue(ctx context.Context, userID string) (string, error)
	List(ctx context.Context, userID string) ([]domain.APIKeyPreview, error)
}

// Handler обрабатывает HTTP запросы шлюза
type Handler struct {
	logger     pkglogger.Logger
	aggregator StatusAggregator
	selector   EndpointSelector
	forwarder  Forwarder
	tokens     TokenService
}

// NewHandler создает новый HTTP обработчик
func NewHandler(
	logger pkglogger.Logger,
	aggregator StatusAggregator,
	selector EndpointSelector,
	forwarder Forwarder,
	tokens TokenService,
) *Handler {
	return &Handler{
		logger:     logger,
		aggregator: aggregator,
		selector:   selector,
		forwarder:  forwarder,
		tokens:     tokens,
	}
}

// RegisterRoutes регистрирует HTTP маршруты
// Все маршруты шлюза проходят через gate; health эндпоинты публичны
func (h *Handler) RegisterRoutes(mux *http.ServeMux, gate *auth.Gate) {
	mux.Handle("/status", gate.Middleware(http.HandlerFunc(h.handleStatus)))
	mux.Handle("/fetch", gate.Middleware(http.HandlerFunc(h.handleFetch)))
	mux.Handle("/generate-api-key", gate.Middleware(http.HandlerFunc(h.handleGenerateAPIKey)))
	mux.Handle("/api-keys", gate.Middleware(http.HandlerFunc(h.handleListAPIKeys)))
}

// statusResponse ответ на запрос статуса региона
type statusResponse struct {
	Statuses []domain.RegionStatus `json:"statuses"`
}

// handleStatus возвращает статус всех endpoint'ов региона
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	region := r.URL.Query().Get("region")
	if region == "" {
		errors.WriteHTTP(w, errors.New(errors.ErrValidation, "region is required"))
		return
	}

	aggregation, err := h.aggregator.Aggregate(r.Context(), region)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, statusResponse{
		Statuses: []domain.RegionStatus{aggregation.Status},
	})
}

// fetchRequest тело запроса на проксирование
type fetchRequest struct {
	URL string `json:"url"`
}

// fetchResponse ответ на проксированный запрос
// Наружу возвращается только регион, не конкретный endpoint
type fetchResponse struct {
	Result     string `json:"result"`
	PublicIP   string `json:"public_ip"`
	DeviceID   string `json:"device_id"`
	RegionUsed string `json:"region_used"`
}

// handleFetch проксирует запрос через доступный endpoint региона
func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	region := r.URL.Query().Get("region")
	if region == "" {
		errors.WriteHTTP(w, errors.New(errors.ErrValidation, "region is required"))
		return
	}

	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteHTTP(w, errors.New(errors.ErrValidation, "invalid JSON body"))
		return
	}
	if req.URL == "" {
		errors.WriteHTTP(w, errors.New(errors.ErrValidation, "url is required"))
		return
	}

	// Свежий опрос региона перед каждым проксированием
	aggregation, err := h.aggregator.Aggregate(r.Context(), region)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}

	endpoint, err := h.selector.Pick(region, aggregation.Results)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}

	result, err := h.forwarder.Forward(r.Context(), region, endpoint, req.URL)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, fetchResponse{
		Result:     result.Result,
		PublicIP:   result.PublicIP,
		DeviceID:   result.DeviceID,
		RegionUsed: region,
	})
}

// generateAPIKeyResponse ответ на выпуск нового токена
type generateAPIKeyResponse struct {
	APIKey string `json:"api_key"`
}

// handleGenerateAPIKey выпускает новый токен для пользователя
func (h *Handler) handleGenerateAPIKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		errors.WriteHTTP(w, errors.New(errors.ErrUnauthorized, "API key required"))
		return
	}

	apiKey, err := h.tokens.Issue(r.Context(), userID)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, generateAPIKeyResponse{APIKey: apiKey})
}

// handleListAPIKeys возвращает превью активных токенов пользователя
func (h *Handler) handleListAPIKeys(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		errors.WriteHTTP(w, errors.New(errors.ErrUnauthorized, "API key required"))
		return
	}

	previews, err := h.tokens.List(r.Context(), userID)
	if err != nil {
		errors.WriteHTTP(w, err)
		return
	}

	if previews == nil {
		previews = []domain.APIKeyPreview{}
	}

	h.writeJSON(w, http.StatusOK, previews)
}

// writeJSON отправляет JSON ответ
func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", pkglogger.Error(err))
	}
}
