package proxy

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"GeoProxyPlatform/internal/domain"
	"GeoProxyPlatform/pkg/errors"
)

// Selector выбирает endpoint для проксирования из доступных
// Выбор равномерно случайный, без учета времени ответа и без
// закрепления за клиентом
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector создает Selector со случайным начальным состоянием
func NewSelector() *Selector {
	return NewSelectorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewSelectorWithSource создает Selector с заданным источником
// случайности (для детерминированных тестов)
func NewSelectorWithSource(src rand.Source) *Selector {
	return &Selector{rng: rand.New(src)}
}

// Pick выбирает случайный доступный endpoint из результатов проверок
// Возвращает ErrUnavailable, если ни один endpoint не доступен
func (s *Selector) Pick(region string, results []domain.HealthCheckResult) (string, error) {
	healthy := make([]string, 0, len(results))
	for _, r := range results {
		if r.IsHealthy {
			healthy = append(healthy, r.Endpoint)
		}
	}

	if len(healthy) == 0 {
		return "", errors.New(errors.ErrUnavailable,
			fmt.Sprintf("no healthy proxy endpoints available in %s", region))
	}

	s.mu.Lock()
	idx := s.rng.Intn(len(healthy))
	s.mu.Unlock()

	return healthy[idx], nil
}
