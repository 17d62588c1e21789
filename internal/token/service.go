package token

import (
	"context"
	"time"

	"github.com/google/uuid"

	"GeoProxyPlatform/internal/domain"
	"GeoProxyPlatform/internal/metrics"
	"GeoProxyPlatform/internal/repository"
	"GeoProxyPlatform/pkg/errors"
	"GeoProxyPlatform/pkg/logger"
)

// Service управляет жизненным циклом API токенов:
// выпуск, листинг превью и аутентификация входящих запросов
type Service struct {
	manager *Manager
	tokens  repository.TokenRepository
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewService создает новый сервис токенов
func NewService(manager *Manager, tokens repository.TokenRepository, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		manager: manager,
		tokens:  tokens,
		logger:  log,
		metrics: m,
	}
}

// Issue выпускает новый токен для пользователя и сохраняет его
// Возвращает полную строку токена; это единственное место,
// где она доступна целиком
func (s *Service) Issue(ctx context.Context, userID string) (string, error) {
	tokenString, expiresAt, err := s.manager.Generate(userID)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to generate API key")
	}

	apiToken := &domain.APIToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     tokenString,
		IsActive:  true,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.tokens.Create(ctx, apiToken); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to store API key")
	}

	s.metrics.ObserveTokenIssued()
	s.logger.Info("API key issued",
		logger.String("user_id", userID),
		logger.String("token_id", apiToken.ID))

	return tokenString, nil
}

// List возвращает превью активных токенов пользователя
// Полные строки токенов наружу не выдаются
func (s *Service) List(ctx context.Context, userID string) ([]domain.APIKeyPreview, error) {
	tokens, err := s.tokens.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to list API keys")
	}

	previews := make([]domain.APIKeyPreview, 0, len(tokens))
	for _, t := range tokens {
		preview, err := Preview(t.Token)
		if err != nil {
			s.logger.Warn("skipping token with malformed value",
				logger.String("token_id", t.ID),
				logger.Error(err))
			continue
		}

		previews = append(previews, domain.APIKeyPreview{
			KeyPreview: preview,
			CreatedAt:  t.CreatedAt,
			ExpiresAt:  t.ExpiresAt,
			IsActive:   t.IsActive,
		})
	}

	return previews, nil
}

// Authenticate проверяет входящий токен: подпись, срок действия
// и состояние сохраненной записи. Возвращает идентификатор пользователя
func (s *Service) Authenticate(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.manager.Verify(tokenString)
	if err != nil {
		return "", err
	}

	record, err := s.tokens.FindByToken(ctx, tokenString)
	if err != nil {
		if errors.IsCode(err, errors.ErrNotFound) {
			return "", errors.New(errors.ErrUnauthorized, "invalid API key")
		}
		return "", errors.Wrap(err, errors.ErrInternal, "failed to look up API key")
	}

	if !record.IsActive {
		return "", errors.New(errors.ErrUnauthorized, "invalid API key")
	}

	return claims.UserID, nil
}
