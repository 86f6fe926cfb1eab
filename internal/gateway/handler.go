package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"facilityhub/internal/auth"
	apperrors "facilityhub/internal/errors"
	"facilityhub/internal/upstream"
)

// Name is reported by the health endpoint.
const Name = "Mobile API Gateway"

// Upstream is the call contract the relay needs from an upstream client.
type Upstream interface {
	Do(ctx context.Context, method, path string, body any) (*upstream.Response, error)
}

// Handler translates mobile requests to the auth and reservation services
// and decorates their successful answers with mobile metadata. Reservation
// calls carry the session email in upstream.UserEmailHeader; ownership of an
// existing reservation is decided by the reservation service.
type Handler struct {
	authSvc        Upstream
	reservationSvc Upstream
	devices        DeviceRegistry
	now            func() time.Time
}

// NewHandler creates the mobile relay.
func NewHandler(authSvc, reservationSvc Upstream, devices DeviceRegistry) *Handler {
	return &Handler{
		authSvc:        authSvc,
		reservationSvc: reservationSvc,
		devices:        devices,
		now:            time.Now,
	}
}

// failure describes how one route reports upstream failures.
type failure struct {
	unavailable string
	fallback    string
	// passDetail forwards the upstream's own detail when it has one.
	passDetail bool
}

var (
	registerFailure = failure{"Auth service unavailable", "Registration failed", true}
	loginFailure    = failure{"Auth service unavailable", "Login failed", true}
	createFailure   = failure{"Reservation service unavailable", "Failed to create reservation", false}
	fetchFailure    = failure{"Reservation service unavailable", "Failed to fetch reservation", false}
	cancelFailure   = failure{"Reservation service unavailable", "Failed to cancel reservation", false}
)

func (f failure) toHTTP(err error) error {
	var rejected *upstream.RejectedError
	if errors.As(err, &rejected) {
		detail := f.fallback
		if f.passDetail && rejected.Detail != "" {
			detail = rejected.Detail
		}
		status := rejected.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return echo.NewHTTPError(status, apperrors.ErrorResponse{Detail: detail})
	}
	if errors.Is(err, upstream.ErrUnavailable) {
		return apperrors.NewHTTPError(http.StatusServiceUnavailable, f.unavailable, "UPSTREAM_UNAVAILABLE")
	}
	if errors.Is(err, upstream.ErrInvalidResponse) {
		return apperrors.NewHTTPError(http.StatusBadGateway, f.fallback, "UPSTREAM_INVALID_RESPONSE")
	}
	return err
}

// Register godoc
// @Summary Mobile registration
// @Tags mobile-auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string false "Device id (used when the body has none)"
// @Param request body MobileRegisterRequest true "Registration envelope"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /mobile/auth/register [post]
func (h *Handler) Register(c echo.Context) error {
	var req MobileRegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	deviceID := deviceInfoFrom(c).deviceID(req.DeviceID)

	resp, err := h.authSvc.Do(ctx, http.MethodPost, "/register", authRegisterPayload{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return registerFailure.toHTTP(err)
	}

	zerolog.Ctx(ctx).Info().Str("email", req.Email).Str("device_id", deviceID).Msg("mobile user registered")
	return c.JSON(http.StatusOK, augment(resp.Body, map[string]any{
		"mobile_registration": true,
		"device_registered":   deviceID != "",
	}))
}

// Login godoc
// @Summary Mobile login
// @Tags mobile-auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string false "Device id (used when the body has none)"
// @Param request body MobileLoginRequest true "Login envelope"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /mobile/auth/login [post]
func (h *Handler) Login(c echo.Context) error {
	var req MobileLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	deviceID := deviceInfoFrom(c).deviceID(req.DeviceID)

	resp, err := h.authSvc.Do(ctx, http.MethodPost, "/login", authLoginPayload{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return loginFailure.toHTTP(err)
	}

	if deviceID != "" && req.PushToken != "" {
		if err := h.devices.Register(ctx, req.Email, deviceID, req.PushToken); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("email", req.Email).Msg("device registration skipped")
		}
	}

	var device any
	if deviceID != "" {
		device = deviceID
	}

	zerolog.Ctx(ctx).Info().Str("email", req.Email).Str("device_id", deviceID).Msg("mobile user logged in")
	return c.JSON(http.StatusOK, augment(resp.Body, map[string]any{
		"mobile_login":               true,
		"device_id":                  device,
		"push_notifications_enabled": req.PushToken != "",
	}))
}

// CreateReservation godoc
// @Summary Book a facility
// @Tags mobile-reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MobileReservationRequest true "Reservation envelope"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /mobile/reservations [post]
func (h *Handler) CreateReservation(c echo.Context) error {
	claims, ok := auth.SessionClaims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{Detail: auth.SessionMessage, Code: "INVALID_SESSION"})
	}

	var req MobileReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	switch {
	case req.UserEmail == "":
		req.UserEmail = claims.Email()
	case req.UserEmail != claims.Email():
		return apperrors.NewHTTPError(http.StatusForbidden, "Cannot book on behalf of another user", "FORBIDDEN")
	}

	ctx := upstream.WithUserEmail(c.Request().Context(), claims.Email())
	resp, err := h.reservationSvc.Do(ctx, http.MethodPost, "/reservations", req.toUpstream())
	if err != nil {
		return createFailure.toHTTP(err)
	}

	zerolog.Ctx(ctx).Info().Str("email", req.UserEmail).Str("facility_id", req.FacilityID).
		Str("app_version", deviceInfoFrom(c).AppVersion).Interface("device_info", req.DeviceInfo).
		Msg("mobile reservation created")
	return c.JSON(http.StatusOK, augment(resp.Body, map[string]any{
		"mobile_booking": true,
	}))
}

// GetReservation godoc
// @Summary Fetch a reservation
// @Tags mobile-reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation id"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /mobile/reservations/{id} [get]
func (h *Handler) GetReservation(c echo.Context) error {
	claims, ok := auth.SessionClaims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{Detail: auth.SessionMessage, Code: "INVALID_SESSION"})
	}

	id := c.Param("id")
	ctx := upstream.WithUserEmail(c.Request().Context(), claims.Email())
	resp, err := h.reservationSvc.Do(ctx, http.MethodGet, "/reservations/"+url.PathEscape(id), nil)
	if err != nil {
		return fetchFailure.toHTTP(err)
	}

	return c.JSON(http.StatusOK, augment(resp.Body, map[string]any{
		"mobile_optimized": true,
	}))
}

// CancelReservation godoc
// @Summary Cancel a reservation
// @Tags mobile-reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation id"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /mobile/reservations/{id} [delete]
func (h *Handler) CancelReservation(c echo.Context) error {
	claims, ok := auth.SessionClaims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{Detail: auth.SessionMessage, Code: "INVALID_SESSION"})
	}

	id := c.Param("id")
	ctx := upstream.WithUserEmail(c.Request().Context(), claims.Email())

	resp, err := h.reservationSvc.Do(ctx, http.MethodDelete, "/reservations/"+url.PathEscape(id), nil)
	if err != nil {
		return cancelFailure.toHTTP(err)
	}

	zerolog.Ctx(ctx).Info().Str("email", claims.Email()).Str("reservation_id", id).Msg("mobile reservation cancelled")
	return c.JSON(http.StatusOK, augment(resp.Body, map[string]any{
		"message":             "Reservation cancelled successfully",
		"reservation_id":      id,
		"mobile_cancellation": true,
	}))
}

// RegisterNotifications godoc
// @Summary Register a device for push notifications
// @Tags mobile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string false "Device id (used when the body has none)"
// @Param request body NotificationRegisterRequest true "Push registration"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /mobile/notifications/register [post]
func (h *Handler) RegisterNotifications(c echo.Context) error {
	claims, ok := auth.SessionClaims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{Detail: auth.SessionMessage, Code: "INVALID_SESSION"})
	}

	var req NotificationRegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deviceID := deviceInfoFrom(c).deviceID(req.DeviceID)
	if deviceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "device_id is required")
	}

	ctx := c.Request().Context()
	if err := h.devices.Register(ctx, claims.Email(), deviceID, req.PushToken); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("email", claims.Email()).Str("device_id", deviceID).Msg("push notifications registered")
	return c.JSON(http.StatusOK, map[string]any{
		"message":           "Push notifications registered successfully",
		"user_email":        claims.Email(),
		"device_id":         deviceID,
		"device_registered": true,
	})
}

// ProfileResponse is the mobile view of the session's user.
type ProfileResponse struct {
	Email                    string   `json:"email"`
	PushNotificationsEnabled bool     `json:"push_notifications_enabled"`
	Devices                  []string `json:"devices"`
	AppVersion               string   `json:"app_version,omitempty"`
}

// Profile godoc
// @Summary Mobile profile of the current user
// @Tags mobile
// @Produce json
// @Security BearerAuth
// @Param X-App-Version header string false "Client app version"
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /mobile/user/profile [get]
func (h *Handler) Profile(c echo.Context) error {
	claims, ok := auth.SessionClaims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{Detail: auth.SessionMessage, Code: "INVALID_SESSION"})
	}

	devices, err := h.devices.Devices(c.Request().Context(), claims.Email())
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.DeviceID)
	}

	return c.JSON(http.StatusOK, ProfileResponse{
		Email:                    claims.Email(),
		PushNotificationsEnabled: len(ids) > 0,
		Devices:                  ids,
		AppVersion:               deviceInfoFrom(c).AppVersion,
	})
}

// Health godoc
// @Summary Gateway health
// @Tags mobile
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /mobile/health [get]
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "OK",
		"gateway":   Name,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
