package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	pkglogger "GeoProxyPlatform/pkg/logger"
)

// Pinger проверяет доступность инфраструктурного компонента
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler обрабатывает служебные эндпоинты состояния шлюза
type HealthHandler struct {
	logger   pkglogger.Logger
	database Pinger
	redis    Pinger
}

// NewHealthHandler создает новый обработчик health эндпоинтов
func NewHealthHandler(logger pkglogger.Logger, database, redis Pinger) *HealthHandler {
	return &HealthHandler{
		logger:   logger,
		database: database,
		redis:    redis,
	}
}

// RegisterRoutes регистрирует health эндпоинты
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/ready", h.handleReady)
	mux.HandleFunc("/live", h.handleLive)
}

// handleHealth возвращает состояние шлюза и его зависимостей
func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	components := map[string]string{}
	healthy := true

	for name, pinger := range map[string]Pinger{
		"database": h.database,
		"redis":    h.redis,
	} {
		if pinger == nil {
			continue
		}
		if err := pinger.HealthCheck(ctx); err != nil {
			h.logger.Warn("Component health check failed",
				pkglogger.String("component", name),
				pkglogger.Error(err))
			components[name] = "unhealthy"
			healthy = false
			continue
		}
		components[name] = "healthy"
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC(),
	})
}

// handleReady проверяет готовность принимать трафик
func (h *HealthHandler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.database != nil {
		if err := h.database.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("not ready"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// handleLive проверяет, что процесс жив
func (h *HealthHandler) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}
