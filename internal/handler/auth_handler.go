package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"facilityhub/internal/auth"
	apperrors "facilityhub/internal/errors"
	"facilityhub/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
	FullName string `json:"full_name" validate:"required,max=255"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// MessageResponse is the body of operations that only report success.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// MeResponse is the public view of the session's user.
type MeResponse struct {
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	logger := zerolog.Ctx(c.Request().Context())

	if _, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.FullName); err != nil {
		if errors.Is(err, service.ErrEmailAlreadyRegistered) {
			logger.Warn().Str("email", req.Email).Msg("failed register attempt")
			return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
				Detail: "Email already registered",
				Code:   "EMAIL_ALREADY_REGISTERED",
			})
		}
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return echo.NewHTTPError(http.StatusBadRequest, "password is longer than 72 bytes")
		}
		return err
	}

	logger.Info().Str("email", req.Email).Msg("user registered")
	return c.JSON(http.StatusOK, MessageResponse{Message: "User created successfully"})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	logger := zerolog.Ctx(c.Request().Context())

	token, _, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logger.Warn().Str("email", req.Email).Msg("failed login attempt")
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Detail: "Invalid credentials",
				Code:   "INVALID_CREDENTIALS",
			})
		}
		return err
	}

	logger.Info().Str("email", req.Email).Msg("user logged in")
	return c.JSON(http.StatusOK, LoginResponse{Message: "Login successful", Token: token})
}

// Logout godoc
// @Summary Revoke the current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := auth.SessionClaims(c)
	if !ok {
		return sessionError()
	}

	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		if errors.Is(err, auth.ErrMalformedToken) {
			return sessionError()
		}
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := auth.SessionClaims(c)
	if !ok {
		return sessionError()
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), claims.Email())
	if err != nil {
		// a valid token for a deleted account is still a dead session
		if errors.Is(err, service.ErrUserNotFound) {
			return sessionError()
		}
		return err
	}

	return c.JSON(http.StatusOK, MeResponse{
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
	})
}

func sessionError() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
		Detail: auth.SessionMessage,
		Code:   "INVALID_SESSION",
	})
}
