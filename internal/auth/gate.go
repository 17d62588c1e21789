package auth

import (
	"context"
	"net/http"

	"GeoProxyPlatform/internal/domain"
	"GeoProxyPlatform/internal/repository"
	"GeoProxyPlatform/pkg/errors"
	"GeoProxyPlatform/pkg/logger"
)

// Заголовок с API токеном
const APIKeyHeader = "X-API-Key"

// Ключи контекста для аутентифицированного запроса
const (
	userContextKey   = "user"
	userIDContextKey = "user_id"
)

// Authenticator проверяет входящий токен и возвращает идентификатор пользователя
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (string, error)
}

// Gate middleware авторизации запросов
// Проверка трехступенчатая: токен, активность пользователя, подписка
type Gate struct {
	auth   Authenticator
	users  repository.UserRepository
	logger logger.Logger
}

// NewGate создает новый Gate
func NewGate(auth Authenticator, users repository.UserRepository, log logger.Logger) *Gate {
	return &Gate{
		auth:   auth,
		users:  users,
		logger: log,
	}
}

// Middleware проверяет авторизацию запроса
// Порядок проверок фиксирован: отсутствие ключа, невалидный ключ и
// неактивный пользователь дают 401, отсутствие подписки дает 403
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get(APIKeyHeader)
		if apiKey == "" {
			g.logger.Warn("Missing API key header",
				logger.String("path", r.URL.Path))
			errors.WriteHTTP(w, errors.New(errors.ErrUnauthorized, "API key required"))
			return
		}

		userID, err := g.auth.Authenticate(r.Context(), apiKey)
		if err != nil {
			g.logger.Warn("API key authentication failed",
				logger.String("path", r.URL.Path),
				logger.Error(err))
			errors.WriteHTTP(w, err)
			return
		}

		user, err := g.users.FindByID(r.Context(), userID)
		if err != nil {
			if errors.IsCode(err, errors.ErrNotFound) {
				errors.WriteHTTP(w, errors.New(errors.ErrUnauthorized, "invalid or inactive user"))
				return
			}
			g.logger.Error("Failed to load user",
				logger.String("user_id", userID),
				logger.Error(err))
			errors.WriteHTTP(w, err)
			return
		}

		if !user.IsActive {
			g.logger.Warn("Inactive user rejected",
				logger.String("user_id", userID))
			errors.WriteHTTP(w, errors.New(errors.ErrUnauthorized, "invalid or inactive user"))
			return
		}

		if !user.HasSubscription {
			g.logger.Warn("User without subscription rejected",
				logger.String("user_id", userID))
			errors.WriteHTTP(w, errors.New(errors.ErrForbidden, "active subscription required"))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, userIDContextKey, user.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext возвращает пользователя из контекста запроса
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

// UserIDFromContext возвращает идентификатор пользователя из контекста
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok
}
