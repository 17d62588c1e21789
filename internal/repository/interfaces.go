package repository

import (
	"context"

	"GeoProxyPlatform/internal/domain"
)

// TokenRepository интерфейс для работы с API токенами
type TokenRepository interface {
	// Create сохраняет новый токен
	Create(ctx context.Context, token *domain.APIToken) error
	// FindByToken возвращает токен по его строке
	// Возвращает ErrNotFound, если токен не найден
	FindByToken(ctx context.Context, tokenString string) (*domain.APIToken, error)
	// ListActiveByUser возвращает активные токены пользователя,
	// отсортированные по дате создания по убыванию
	ListActiveByUser(ctx context.Context, userID string) ([]domain.APIToken, error)
}

// UserRepository интерфейс для чтения пользователей
// Жизненный цикл пользователей управляется извне, шлюз только читает
type UserRepository interface {
	// FindByID возвращает пользователя по идентификатору
	// Возвращает ErrNotFound, если пользователь не найден
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
