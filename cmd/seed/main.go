package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"facilityhub/internal/auth"
	"facilityhub/internal/config"
	"facilityhub/internal/db"
	"facilityhub/internal/logging"
	"facilityhub/internal/repository"
	"facilityhub/internal/service"
)

// SeedUser is one entry of the seed file.
type SeedUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// demoUsers is used when no seed file is given.
var demoUsers = []SeedUser{
	{Email: "alice@example.com", Password: "alice-password", FullName: "Alice Example"},
	{Email: "bob@example.com", Password: "bob-password", FullName: "Bob Example"},
}

func main() {
	file := flag.String("file", "", "JSON file with [{email,password,full_name}] entries")
	flag.Parse()

	cfg := config.Load("8000")
	logging.Setup(cfg.LogLevel, "seed")
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.IsProduction() && *file == "" {
		log.Fatal().Msg("refusing to seed demo users in production")
	}

	users := demoUsers
	if *file != "" {
		loaded, err := loadSeedFile(*file)
		if err != nil {
			log.Fatal().Err(err).Msg("read seed file")
		}
		users = loaded
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close(gormDB)

	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	authService := service.NewAuthService(
		repository.NewUserRepository(gormDB),
		auth.NewPasswordHasher(cfg.BcryptCost, cfg.HashWorkers),
		auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL),
		auth.NewTokenStore(nil),
	)

	created, skipped, err := seedUsers(context.Background(), authService, users)
	if err != nil {
		log.Fatal().Err(err).Int("created", created).Msg("seed failed")
	}

	log.Info().Int("created", created).Int("existing", skipped).Msg("seed completed")
}

// loadSeedFile reads seed users from a JSON array.
func loadSeedFile(path string) ([]SeedUser, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var users []SeedUser
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return users, nil
}

// seedUsers registers each user, leaving already registered emails untouched.
func seedUsers(ctx context.Context, svc service.AuthService, users []SeedUser) (created int, skipped int, err error) {
	for _, u := range users {
		if u.Email == "" || u.Password == "" {
			return created, skipped, fmt.Errorf("seed entry %q: email and password are required", u.Email)
		}
		if _, err := svc.Register(ctx, u.Email, u.Password, u.FullName); err != nil {
			if errors.Is(err, service.ErrEmailAlreadyRegistered) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("register %s: %w", u.Email, err)
		}
		created++
	}
	return created, skipped, nil
}
