package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"GeoProxyPlatform/internal/domain"
	"GeoProxyPlatform/internal/repository"
	"GeoProxyPlatform/pkg/errors"
	"GeoProxyPlatform/pkg/logger"
)

// UserRepository реализация репозитория пользователей для PostgreSQL
// Только чтение: записи создаются и обновляются внешней системой
type UserRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// NewUserRepository создает новый репозиторий пользователей
func NewUserRepository(pool *pgxpool.Pool, logger logger.Logger) repository.UserRepository {
	return &UserRepository{
		pool:   pool,
		logger: logger,
	}
}

// FindByID получает пользователя по идентификатору
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, is_active, has_subscription, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &domain.User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.IsActive,
		&user.HasSubscription,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.ErrNotFound, "user not found")
		}
		r.logger.Error("Failed to find user",
			logger.String("user_id", id),
			logger.Error(err),
		)
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to find user")
	}

	return user, nil
}
