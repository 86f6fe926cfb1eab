package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	_ "facilityhub/docs/usersvc" // swagger docs

	"facilityhub/internal/auth"
	"facilityhub/internal/cache"
	"facilityhub/internal/config"
	"facilityhub/internal/db"
	"facilityhub/internal/handler"
	"facilityhub/internal/logging"
	"facilityhub/internal/repository"
	"facilityhub/internal/router"
	"facilityhub/internal/service"
)

// @title User Service API
// @version 1.0
// @description Registration, login and session management for the facility reservation platform.
// @host localhost:8000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load("8000")
	logging.Setup(cfg.LogLevel, "usersvc")
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" && !cfg.IsProduction() {
		log.Warn().Msg("RESET_DB=true detected, dropping user tables")
		if err := db.Reset(gormDB); err != nil {
			log.Warn().Err(err).Msg("drop tables (may not exist)")
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, logout revocation disabled until it returns")
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost, cfg.HashWorkers)

	userRepo := repository.NewUserRepository(gormDB)
	authService := service.NewAuthService(userRepo, hasher, jwtService, tokenStore)
	authHandler := handler.NewAuthHandler(authService)

	e := echo.New()
	router.Register(e, authHandler, jwtService, tokenStore)

	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("env", cfg.Env).Msg("starting user service")
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
