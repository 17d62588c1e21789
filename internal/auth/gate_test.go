package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"GeoProxyPlatform/internal/domain"
	"GeoProxyPlatform/pkg/errors"
	"GeoProxyPlatform/pkg/logger"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, tokenString string) (string, error) {
	args := m.Called(ctx, tokenString)
	return args.String(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func newGate(t *testing.T, auth *MockAuthenticator, users *MockUserRepository) *Gate {
	log, err := logger.NewLogger("development", "debug", "gateway-test")
	require.NoError(t, err)
	return NewGate(auth, users, log)
}

func activeUser() *domain.User {
	return &domain.User{
		ID:              "user-1",
		Email:           "user@example.com",
		IsActive:        true,
		HasSubscription: true,
	}
}

func runGate(g *Gate, apiKey string) (*httptest.ResponseRecorder, bool) {
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/status?region=europe", nil)
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	rec := httptest.NewRecorder()

	g.Middleware(next).ServeHTTP(rec, req)
	return rec, reached
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestGate_Allowed(t *testing.T) {
	authMock := new(MockAuthenticator)
	users := new(MockUserRepository)

	authMock.On("Authenticate", mock.Anything, "valid-key").Return("user-1", nil)
	users.On("FindByID", mock.Anything, "user-1").Return(activeUser(), nil)

	g := newGate(t, authMock, users)
	rec, reached := runGate(g, "valid-key")

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGate_MissingAPIKey(t *testing.T) {
	g := newGate(t, new(MockAuthenticator), new(MockUserRepository))
	rec, reached := runGate(g, "")

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestGate_InvalidToken(t *testing.T) {
	authMock := new(MockAuthenticator)
	authMock.On("Authenticate", mock.Anything, "bad-key").
		Return("", errors.New(errors.ErrUnauthorized, "invalid API key"))

	users := new(MockUserRepository)
	g := newGate(t, authMock, users)
	rec, reached := runGate(g, "bad-key")

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGate_UnknownUser(t *testing.T) {
	authMock := new(MockAuthenticator)
	users := new(MockUserRepository)

	authMock.On("Authenticate", mock.Anything, "valid-key").Return("ghost", nil)
	users.On("FindByID", mock.Anything, "ghost").
		Return(nil, errors.New(errors.ErrNotFound, "user not found"))

	g := newGate(t, authMock, users)
	rec, reached := runGate(g, "valid-key")

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGate_InactiveUser(t *testing.T) {
	authMock := new(MockAuthenticator)
	users := new(MockUserRepository)

	user := activeUser()
	user.IsActive = false

	authMock.On("Authenticate", mock.Anything, "valid-key").Return("user-1", nil)
	users.On("FindByID", mock.Anything, "user-1").Return(user, nil)

	g := newGate(t, authMock, users)
	rec, reached := runGate(g, "valid-key")

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGate_NoSubscription(t *testing.T) {
	authMock := new(MockAuthenticator)
	users := new(MockUserRepository)

	user := activeUser()
	user.HasSubscription = false

	authMock.On("Authenticate", mock.Anything, "valid-key").Return("user-1", nil)
	users.On("FindByID", mock.Anything, "user-1").Return(user, nil)

	g := newGate(t, authMock, users)
	rec, reached := runGate(g, "valid-key")

	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
}

func TestGate_StorageFailure(t *testing.T) {
	authMock := new(MockAuthenticator)
	users := new(MockUserRepository)

	authMock.On("Authenticate", mock.Anything, "valid-key").Return("user-1", nil)
	users.On("FindByID", mock.Anything, "user-1").
		Return(nil, errors.New(errors.ErrInternal, "database unavailable"))

	g := newGate(t, authMock, users)
	rec, reached := runGate(g, "valid-key")

	assert.False(t, reached)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGate_ContextPropagation(t *testing.T) {
	authMock := new(MockAuthenticator)
	users := new(MockUserRepository)

	authMock.On("Authenticate", mock.Anything, "valid-key").Return("user-1", nil)
	users.On("FindByID", mock.Anything, "user-1").Return(activeUser(), nil)

	g := newGate(t, authMock, users)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "user-1", user.ID)

		userID, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "user-1", userID)

		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api-keys", nil)
	req.Header.Set(APIKeyHeader, "valid-key")
	rec := httptest.NewRecorder()

	g.Middleware(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
