package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"GeoProxyPlatform/pkg/errors"
)

// Длина видимых частей токена в превью
const (
	frontPreviewLength = 8
	endPreviewLength   = 8
)

// Claims структура для хранения пользовательских данных в API токене
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager выпускает и проверяет подписанные API токены
type Manager struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewManager создает новый экземпляр менеджера токенов
func NewManager(secretKey string, tokenTTL time.Duration) *Manager {
	return &Manager{
		secretKey: secretKey,
		tokenTTL:  tokenTTL,
	}
}

// Generate выпускает токен для пользователя
// Возвращает строку токена и момент истечения
func (m *Manager) Generate(userID string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(m.tokenTTL)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify проверяет подпись и срок действия токена
// Состояние токена в хранилище здесь не проверяется
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем метод подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUnauthorized, "invalid API key")
	}

	claims, ok := parsedToken.Claims.(*Claims)
	if !ok || !parsedToken.Valid || claims.UserID == "" {
		return nil, errors.New(errors.ErrUnauthorized, "invalid API key")
	}

	return claims, nil
}

// Preview возвращает сокращенное представление токена:
// первые и последние символы, разделенные троеточием
func Preview(token string) (string, error) {
	if len(token) < frontPreviewLength+endPreviewLength {
		return "", errors.New(errors.ErrValidation, "token is too short for preview")
	}

	return fmt.Sprintf("%s...%s",
		token[:frontPreviewLength],
		token[len(token)-endPreviewLength:]), nil
}
