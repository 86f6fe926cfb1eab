package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"facilityhub/internal/auth"
	"facilityhub/internal/model"
	"facilityhub/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func newTestHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(bcrypt.MinCost, 4)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	digest, err := newTestHasher().Hash(context.Background(), password)
	require.NoError(t, err)
	return digest
}

func TestAuthService_Register(t *testing.T) {
	dbErr := errors.New("connection reset")

	tests := []struct {
		name          string
		email         string
		password      string
		fullName      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			email:    "a@x.com",
			password: "testpass123",
			fullName: "Test User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, repository.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:     "email already registered",
			email:    "existing@x.com",
			password: "testpass123",
			fullName: "Existing User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@x.com").Return(&model.User{Email: "existing@x.com"}, nil)
			},
			expectedError: ErrEmailAlreadyRegistered,
		},
		{
			name:     "lost race on unique index",
			email:    "race@x.com",
			password: "testpass123",
			fullName: "Racer",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@x.com").Return(nil, repository.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(repository.ErrDuplicateKey)
			},
			expectedError: ErrEmailAlreadyRegistered,
		},
		{
			name:     "storage failure on lookup",
			email:    "down@x.com",
			password: "testpass123",
			fullName: "Down",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "down@x.com").Return(nil, dbErr)
			},
			expectedError: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, newTestHasher(), auth.NewJWTService("test-secret", time.Hour), new(MockTokenStore))
			user, err := svc.Register(context.Background(), tt.email, tt.password, tt.fullName)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.fullName, user.FullName)
				assert.NotEqual(t, tt.password, user.PasswordHash)
				assert.True(t, newTestHasher().Verify(context.Background(), tt.password, user.PasswordHash))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	digest := mustHash(t, "pw1")

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "b@x.com",
			password: "pw1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "b@x.com").Return(&model.User{Email: "b@x.com", PasswordHash: digest}, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "b@x.com",
			password: "wrong",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "b@x.com").Return(&model.User{Email: "b@x.com", PasswordHash: digest}, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@x.com",
			password: "pw1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	jwtService := auth.NewJWTService("test-secret", time.Hour)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, newTestHasher(), jwtService, new(MockTokenStore))
			token, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				claims, err := jwtService.Verify(token)
				require.NoError(t, err)
				assert.Equal(t, tt.email, claims.Subject)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

// recordingHasher remembers the digests Verify was asked to compare against.
type recordingHasher struct {
	*auth.PasswordHasher
	mu       sync.Mutex
	compared []string
}

func (h *recordingHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	h.mu.Lock()
	h.compared = append(h.compared, digest)
	h.mu.Unlock()
	return h.PasswordHasher.Verify(ctx, plaintext, digest)
}

// MockPasswordHasher is a mock implementation of PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	args := m.Called(ctx, plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	args := m.Called(ctx, plaintext, digest)
	return args.Bool(0)
}

func TestAuthService_Login_UnknownEmailAfterCancelledRequest(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, repository.ErrNotFound)

	hasher := &recordingHasher{PasswordHasher: newTestHasher()}
	svc := NewAuthService(mockRepo, hasher, auth.NewJWTService("s", time.Hour), new(MockTokenStore))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := svc.Login(cancelled, "nobody@x.com", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	for i := 0; i < 2; i++ {
		_, _, err := svc.Login(context.Background(), "nobody@x.com", "pw1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	require.Len(t, hasher.compared, 3)
	for _, digest := range hasher.compared {
		_, err := bcrypt.Cost([]byte(digest))
		assert.NoError(t, err, "compared against %q", digest)
	}
	assert.Equal(t, hasher.compared[0], hasher.compared[2])
}

func TestAuthService_Login_DummyDigestRetriedAfterFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, repository.ErrNotFound)

	hasher := new(MockPasswordHasher)
	hasher.On("Hash", mock.Anything, mock.Anything).Return("", errors.New("no slot")).Once()
	hasher.On("Hash", mock.Anything, mock.Anything).Return("dummy-digest", nil).Once()
	hasher.On("Verify", mock.Anything, "pw1", "").Return(false).Once()
	hasher.On("Verify", mock.Anything, "pw1", "dummy-digest").Return(false).Twice()

	svc := NewAuthService(mockRepo, hasher, auth.NewJWTService("s", time.Hour), new(MockTokenStore))
	for i := 0; i < 3; i++ {
		_, _, err := svc.Login(context.Background(), "nobody@x.com", "pw1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	hasher.AssertExpectations(t)
	hasher.AssertNumberOfCalls(t, "Hash", 2)
}

func TestAuthService_Logout(t *testing.T) {
	store := new(MockTokenStore)
	store.On("Revoke", mock.Anything, "jti-1", mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 50*time.Minute && ttl <= time.Hour
	})).Return(nil)

	svc := NewAuthService(new(MockUserRepository), newTestHasher(), auth.NewJWTService("s", time.Hour), store)
	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti-1",
		Subject:   "a@x.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}

	require.NoError(t, svc.Logout(context.Background(), claims))
	store.AssertExpectations(t)

	assert.ErrorIs(t, svc.Logout(context.Background(), &auth.Claims{}), auth.ErrMalformedToken)
}

func TestAuthService_CurrentUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{Email: "a@x.com", FullName: "A"}, nil)
	mockRepo.On("FindByEmail", mock.Anything, "gone@x.com").Return(nil, repository.ErrNotFound)

	svc := NewAuthService(mockRepo, newTestHasher(), auth.NewJWTService("s", time.Hour), new(MockTokenStore))

	user, err := svc.CurrentUser(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "A", user.FullName)

	_, err = svc.CurrentUser(context.Background(), "gone@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
