package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"facilityhub/internal/auth"
	apperrors "facilityhub/internal/errors"
	"facilityhub/internal/gateway"
	"facilityhub/internal/handler"
	"facilityhub/internal/logging"
	"facilityhub/internal/metrics"
)

// Swagger instance names; each binary registers its own docs package.
const (
	UserServiceDocs = "usersvc"
	GatewayDocs     = "mobilegw"
)

// Register wires the user service routes and middleware.
func Register(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
) {
	setup(e, UserServiceDocs)

	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// Secured routes (require a live session)
	session := auth.RequireSession(jwtService, tokenStore)
	e.POST("/logout", authHandler.Logout, session)
	e.GET("/me", authHandler.Me, session)

	// Same operations under the prefix older clients use.
	users := e.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
}

// RegisterGateway wires the mobile gateway routes and middleware.
func RegisterGateway(
	e *echo.Echo,
	gw *gateway.Handler,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
) {
	setup(e, GatewayDocs)

	mobile := e.Group("/mobile")

	// Public routes
	mobile.GET("/health", gw.Health)
	mobile.POST("/auth/register", gw.Register)
	mobile.POST("/auth/login", gw.Login)

	// Secured routes (require a session issued by the auth service)
	secured := mobile.Group("", auth.RequireSession(jwtService, tokenStore))
	secured.POST("/reservations", gw.CreateReservation)
	secured.GET("/reservations/:id", gw.GetReservation)
	secured.DELETE("/reservations/:id", gw.CancelReservation)
	secured.POST("/notifications/register", gw.RegisterNotifications)
	secured.GET("/user/profile", gw.Profile)
}

func setup(e *echo.Echo, docs string) {
	e.HideBanner = true
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler
	e.Validator = NewValidator()

	e.Use(middleware.RequestID())
	e.Use(metrics.Middleware())
	e.Use(logging.Middleware())
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", metrics.Handler())
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName(docs)))
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator shared by both services.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
