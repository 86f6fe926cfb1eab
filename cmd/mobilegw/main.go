package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	_ "facilityhub/docs/mobilegw" // swagger docs

	"facilityhub/internal/auth"
	"facilityhub/internal/cache"
	"facilityhub/internal/config"
	"facilityhub/internal/gateway"
	"facilityhub/internal/logging"
	"facilityhub/internal/router"
	"facilityhub/internal/upstream"
)

// @title Mobile API Gateway
// @version 1.0
// @description Mobile-facing gateway in front of the auth and reservation services.
// @host localhost:3001
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load("3001")
	logging.Setup(cfg.LogLevel, "mobilegw")
	if err := cfg.ValidateGateway(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, device registry degraded")
	}

	// The gateway only verifies sessions; it never issues them.
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	gw := gateway.NewHandler(
		upstream.New("auth", cfg.AuthServiceURL, cfg.UpstreamTimeout),
		upstream.New("reservation", cfg.ReservationServiceURL, cfg.UpstreamTimeout),
		gateway.NewDeviceRegistry(cacheClient),
	)

	e := echo.New()
	router.RegisterGateway(e, gw, jwtService, tokenStore)

	go func() {
		log.Info().
			Str("port", cfg.ServerPort).
			Str("auth_service", cfg.AuthServiceURL).
			Str("reservation_service", cfg.ReservationServiceURL).
			Dur("upstream_timeout", cfg.UpstreamTimeout).
			Msg("starting mobile gateway")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	log.Info().Msg("graceful shutdown complete")
}
