package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"facilityhub/internal/auth"
	"facilityhub/internal/db"
	apperrors "facilityhub/internal/errors"
	"facilityhub/internal/model"
	"facilityhub/internal/repository"
	"facilityhub/internal/service"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password, fullName string) (*model.User, error) {
	args := m.Called(ctx, email, password, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type structValidator struct {
	validator *validator.Validate
}

func (v *structValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho(h *AuthHandler, jwtService *auth.JWTService, store auth.TokenStoreInterface) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler
	e.Validator = &structValidator{validator: validator.New()}
	e.POST("/register", h.Register)
	e.POST("/login", h.Login)
	session := auth.RequireSession(jwtService, store)
	e.POST("/logout", h.Logout, session)
	e.GET("/me", h.Me, session)
	return e
}

func doJSON(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockAuthService)
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{
			name: "created",
			body: `{"email":"a@x.com","password":"pw1","full_name":"A"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, "a@x.com", "pw1", "A").Return(&model.User{Email: "a@x.com"}, nil)
			},
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantValue:  "User created successfully",
		},
		{
			name: "duplicate email",
			body: `{"email":"a@x.com","password":"pw1","full_name":"A"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, "a@x.com", "pw1", "A").Return(nil, service.ErrEmailAlreadyRegistered)
			},
			wantStatus: http.StatusBadRequest,
			wantKey:    "detail",
			wantValue:  "Email already registered",
		},
		{
			name: "storage failure is hidden",
			body: `{"email":"a@x.com","password":"pw1","full_name":"A"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, "a@x.com", "pw1", "A").Return(nil, errors.New("create user: Error 1040: Too many connections"))
			},
			wantStatus: http.StatusInternalServerError,
			wantKey:    "detail",
			wantValue:  apperrors.InternalMessage,
		},
		{
			name:       "missing full name",
			body:       `{"email":"a@x.com","password":"pw1"}`,
			setupMock:  func(m *MockAuthService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			setupMock:  func(m *MockAuthService) {},
			wantStatus: http.StatusBadRequest,
			wantKey:    "detail",
			wantValue:  "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockAuthService)
			tt.setupMock(mockSvc)

			e := newTestEcho(NewAuthHandler(mockSvc), auth.NewJWTService("s", time.Hour), nil)
			rec := doJSON(e, http.MethodPost, "/register", tt.body, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantKey != "" {
				assert.Equal(t, tt.wantValue, decode(t, rec)[tt.wantKey])
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	mockSvc := new(MockAuthService)
	mockSvc.On("Login", mock.Anything, "b@x.com", "pw1").Return("signed.token.value", &model.User{Email: "b@x.com"}, nil)
	mockSvc.On("Login", mock.Anything, "b@x.com", "bad").Return("", nil, service.ErrInvalidCredentials)

	e := newTestEcho(NewAuthHandler(mockSvc), auth.NewJWTService("s", time.Hour), nil)

	rec := doJSON(e, http.MethodPost, "/login", `{"email":"b@x.com","password":"pw1"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "signed.token.value", body["token"])

	rec = doJSON(e, http.MethodPost, "/login", `{"email":"b@x.com","password":"bad"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decode(t, rec)["detail"])
}

func newSQLiteStack(t *testing.T) (*echo.Echo, *auth.JWTService) {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))

	jwtService := auth.NewJWTService("stack-secret", time.Hour)
	store := &memoryTokenStore{revoked: map[string]bool{}}
	svc := service.NewAuthService(
		repository.NewUserRepository(gormDB),
		auth.NewPasswordHasher(bcrypt.MinCost, 2),
		jwtService,
		store,
	)
	return newTestEcho(NewAuthHandler(svc), jwtService, store), jwtService
}

type memoryTokenStore struct {
	revoked map[string]bool
}

func (s *memoryTokenStore) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	s.revoked[tokenID] = true
	return nil
}

func (s *memoryTokenStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], nil
}

func TestAuthHandler_EndToEnd(t *testing.T) {
	e, jwtService := newSQLiteStack(t)

	rec := doJSON(e, http.MethodPost, "/register", `{"email":"a@x.com","password":"pw1","full_name":"A"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/register", `{"email":"a@x.com","password":"other","full_name":"B"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", decode(t, rec)["detail"])

	rec = doJSON(e, http.MethodPost, "/login", `{"email":"a@x.com","password":"pw1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decode(t, rec)["token"].(string)
	claims, err := jwtService.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email())

	wrongPassword := doJSON(e, http.MethodPost, "/login", `{"email":"a@x.com","password":"nope"}`, "")
	unknownEmail := doJSON(e, http.MethodPost, "/login", `{"email":"ghost@x.com","password":"pw1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())

	rec = doJSON(e, http.MethodGet, "/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec)
	assert.Equal(t, "a@x.com", me["email"])
	assert.Equal(t, "A", me["full_name"])
	assert.NotContains(t, me, "password_hash")

	rec = doJSON(e, http.MethodPost, "/logout", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.SessionMessage, decode(t, rec)["detail"])
}
