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

// TokenRepository реализация репозитория токенов для PostgreSQL
type TokenRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// NewTokenRepository создает новый репозиторий токенов
func NewTokenRepository(pool *pgxpool.Pool, logger logger.Logger) repository.TokenRepository {
	return &TokenRepository{
		pool:   pool,
		logger: logger,
	}
}

// Create сохраняет новый токен в БД
func (r *TokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	r.logger.Debug("Saving API token to database",
		logger.String("token_id", token.ID),
		logger.String("user_id", token.UserID),
	)

	query := `
		INSERT INTO api_tokens (id, user_id, token, is_active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.IsActive,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to save API token",
			logger.String("token_id", token.ID),
			logger.Error(err),
		)
		return errors.Wrap(err, errors.ErrInternal, "failed to save API token")
	}

	return nil
}

// FindByToken получает токен по его строке
func (r *TokenRepository) FindByToken(ctx context.Context, tokenString string) (*domain.APIToken, error) {
	query := `
		SELECT id, user_id, token, is_active, expires_at, created_at
		FROM api_tokens
		WHERE token = $1
	`

	token := &domain.APIToken{}
	err := r.pool.QueryRow(ctx, query, tokenString).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.IsActive,
		&token.ExpiresAt,
		&token.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.ErrNotFound, "API token not found")
		}
		r.logger.Error("Failed to find API token",
			logger.Error(err),
		)
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to find API token")
	}

	return token, nil
}

// ListActiveByUser получает активные токены пользователя
// Результат отсортирован по дате создания по убыванию
func (r *TokenRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.APIToken, error) {
	r.logger.Debug("Listing active API tokens",
		logger.String("user_id", userID),
	)

	query := `
		SELECT id, user_id, token, is_active, expires_at, created_at
		FROM api_tokens
		WHERE user_id = $1 AND is_active = true
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query API tokens",
			logger.String("user_id", userID),
			logger.Error(err),
		)
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to query API tokens")
	}
	defer rows.Close()

	var tokens []domain.APIToken
	for rows.Next() {
		var token domain.APIToken
		if err := rows.Scan(
			&token.ID,
			&token.UserID,
			&token.Token,
			&token.IsActive,
			&token.ExpiresAt,
			&token.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan API token row",
				logger.Error(err),
			)
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to scan API token")
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to read API tokens")
	}

	return tokens, nil
}
