package domain

import (
	"time"
)

// HealthCheckResult представляет результат одной проверки доступности endpoint'а
// Результат создается всегда: таймаут, отказ соединения и неуспешный статус
// превращаются в IsHealthy=false, а не в ошибку
type HealthCheckResult struct {
	Region       string        `json:"region"`
	Endpoint     string        `json:"endpoint"`
	IsHealthy    bool          `json:"is_healthy"`
	ResponseTime time.Duration `json:"response_time"`
	CheckedAt    time.Time     `json:"checked_at"`
}

// RegionStatus представляет агрегированный статус региона
// Вычисляется заново на каждый запрос и нигде не сохраняется
type RegionStatus struct {
	Region           string    `json:"region"`
	IsHealthy        bool      `json:"is_healthy"`
	AvgResponseTime  float64   `json:"avg_response_time"`
	HealthyEndpoints int       `json:"healthy_endpoints"`
	TotalEndpoints   int       `json:"total_endpoints"`
	LastChecked      time.Time `json:"last_checked"`
}

// APIToken представляет подписанный API токен пользователя
// Токен хранится в открытом виде: превью ключа требует первых и последних
// символов оригинальной строки
type APIToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	IsActive  bool      `json:"is_active"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// User представляет пользователя системы
// Хранение и жизненный цикл пользователя управляются извне, шлюз
// только читает поля для принятия решения о доступе
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	IsActive        bool      `json:"is_active"`
	HasSubscription bool      `json:"has_subscription"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// APIKeyPreview представляет сокращенное описание токена для выдачи клиенту
// Полная строка токена наружу не возвращается
type APIKeyPreview struct {
	KeyPreview string    `json:"key_preview"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsActive   bool      `json:"is_active"`
}

// ProxyResult представляет ответ регионального endpoint'а на проксируемый запрос
type ProxyResult struct {
	Result   string `json:"result"`
	PublicIP string `json:"public_ip"`
	DeviceID string `json:"device_id"`
}
