package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"GeoProxyPlatform/internal/domain"
	"GeoProxyPlatform/internal/token"
	"GeoProxyPlatform/pkg/errors"
	"GeoProxyPlatform/pkg/logger"
)

// MockTokenRepository для тестов
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, t *domain.APIToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTokenRepository) FindByToken(ctx context.Context, tokenString string) (*domain.APIToken, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIToken), args.Error(1)
}

func (m *MockTokenRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.APIToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.APIToken), args.Error(1)
}

func newService(t *testing.T, tokens *MockTokenRepository) *token.Service {
	log, err := logger.NewLogger("development", "debug", "gateway-test")
	require.NoError(t, err)

	manager := token.NewManager("test-secret-key", 365*24*time.Hour)
	return token.NewService(manager, tokens, log, nil)
}

func TestService_Issue(t *testing.T) {
	tokens := new(MockTokenRepository)
	svc := newService(t, tokens)

	var stored *domain.APIToken
	tokens.On("Create", mock.Anything, mock.AnythingOfType("*domain.APIToken")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*domain.APIToken)
		}).
		Return(nil)

	tokenString, err := svc.Issue(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	require.NotNil(t, stored)
	assert.Equal(t, "user-1", stored.UserID)
	assert.Equal(t, tokenString, stored.Token)
	assert.True(t, stored.IsActive)
	assert.NotEmpty(t, stored.ID)
	assert.WithinDuration(t, time.Now().UTC().AddDate(1, 0, 0), stored.ExpiresAt, 24*time.Hour)

	tokens.AssertExpectations(t)
}

func TestService_Issue_StorageError(t *testing.T) {
	tokens := new(MockTokenRepository)
	svc := newService(t, tokens)

	tokens.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := svc.Issue(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInternal))
}

func TestService_List(t *testing.T) {
	tokens := new(MockTokenRepository)
	svc := newService(t, tokens)

	now := time.Now().UTC()
	tokens.On("ListActiveByUser", mock.Anything, "user-1").Return([]domain.APIToken{
		{
			ID:        "t1",
			UserID:    "user-1",
			Token:     "abcdefgh0123456789ijklmnop",
			IsActive:  true,
			CreatedAt: now,
			ExpiresAt: now.AddDate(1, 0, 0),
		},
		{
			ID:       "t2",
			UserID:   "user-1",
			Token:    "short", // превью невозможно, токен пропускается
			IsActive: true,
		},
	}, nil)

	previews, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, previews, 1)

	assert.Equal(t, "abcdefgh...ijklmnop", previews[0].KeyPreview)
	assert.True(t, previews[0].IsActive)
	assert.Equal(t, now, previews[0].CreatedAt)
}

func TestService_List_Empty(t *testing.T) {
	tokens := new(MockTokenRepository)
	svc := newService(t, tokens)

	tokens.On("ListActiveByUser", mock.Anything, "user-1").Return([]domain.APIToken{}, nil)

	previews, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, previews)
}

func TestService_Authenticate(t *testing.T) {
	tokens := new(MockTokenRepository)
	svc := newService(t, tokens)

	tokens.On("Create", mock.Anything, mock.Anything).Return(nil)
	issued, err := svc.Issue(context.Background(), "user-7")
	require.NoError(t, err)

	tokens.On("FindByToken", mock.Anything, issued).Return(&domain.APIToken{
		ID:       "t1",
		UserID:   "user-7",
		Token:    issued,
		IsActive: true,
	}, nil)

	userID, err := svc.Authenticate(context.Background(), issued)
	require.NoError(t, err)
	assert.Equal(t, "user-7", userID)
}

func TestService_Authenticate_InvalidToken(t *testing.T) {
	tokens := new(MockTokenRepository)
	svc := newService(t, tokens)

	_, err := svc.Authenticate(context.Background(), "garbage")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))
	tokens.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
}

func TestService_Authenticate_UnknownToken(t *testing.T) {
	tokens := new(MockTokenRepository)
	svc := newService(t, tokens)

	tokens.On("Create", mock.Anything, mock.Anything).Return(nil)
	issued, err := svc.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	tokens.On("FindByToken", mock.Anything, issued).
		Return(nil, errors.New(errors.ErrNotFound, "token not found"))

	_, err = svc.Authenticate(context.Background(), issued)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))
}

func TestService_Authenticate_RevokedToken(t *testing.T) {
	tokens := new(MockTokenRepository)
	svc := newService(t, tokens)

	tokens.On("Create", mock.Anything, mock.Anything).Return(nil)
	issued, err := svc.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	tokens.On("FindByToken", mock.Anything, issued).Return(&domain.APIToken{
		ID:       "t1",
		UserID:   "user-1",
		Token:    issued,
		IsActive: false,
	}, nil)

	_, err = svc.Authenticate(context.Background(), issued)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))
}
