package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// DevJWTSecret is the signing secret used when JWT_SECRET is unset outside production.
const DevJWTSecret = "dev-only-change-me"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env        string
	ServerPort string
	LogLevel   string

	MySQLHost     string
	MySQLPort     string
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	HashWorkers int

	AuthServiceURL        string
	ReservationServiceURL string
	UpstreamTimeout       time.Duration

	ShutdownTimeout time.Duration
}

// Load builds Config from environment with sensible defaults. defaultPort is the
// listen port used when SERVER_PORT is not set, so each binary keeps its own.
// A .env file in the working directory is applied first when present.
func Load(defaultPort string) *Config {
	_ = godotenv.Load()

	return &Config{
		Env:        getEnv("APP_ENV", "development"),
		ServerPort: getEnv("SERVER_PORT", defaultPort),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		MySQLHost:     getEnv("MYSQL_HOST", "localhost"),
		MySQLPort:     getEnv("MYSQL_PORT", "3306"),
		MySQLUser:     getEnv("MYSQL_USER", "root"),
		MySQLPassword: os.Getenv("MYSQL_PASSWORD"),
		MySQLDatabase: getEnv("MYSQL_DATABASE", "testdb"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 60*time.Minute),
		BcryptCost:  getEnvInt("BCRYPT_COST", 10),
		HashWorkers: getEnvInt("HASH_WORKERS", 2*runtime.GOMAXPROCS(0)),

		AuthServiceURL:        getEnv("AUTH_SERVICE_URL", "http://localhost:8000"),
		ReservationServiceURL: getEnv("RESERVATION_SERVICE_URL", "http://localhost:8080"),
		UpstreamTimeout:       getEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// IsProduction reports whether APP_ENV selects the production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects unsafe settings for binaries that own the user database.
// Outside production a missing JWT secret falls back to DevJWTSecret; in
// production it is an error, as is a missing database password.
func (c *Config) Validate() error {
	errs := c.validateCommon()

	if c.IsProduction() && c.MySQLPassword == "" {
		errs = append(errs, errors.New("MYSQL_PASSWORD must be set in production"))
	}
	if c.HashWorkers < 1 {
		errs = append(errs, fmt.Errorf("HASH_WORKERS must be at least 1, got %d", c.HashWorkers))
	}

	return errors.Join(errs...)
}

// ValidateGateway is Validate for the mobile gateway, which has no database
// and hashes no passwords.
func (c *Config) ValidateGateway() error {
	return errors.Join(c.validateCommon()...)
}

func (c *Config) validateCommon() []error {
	var errs []error

	if c.IsProduction() {
		if c.JWTSecret == "" || c.JWTSecret == DevJWTSecret {
			errs = append(errs, errors.New("JWT_SECRET must be set to a non-default value in production"))
		}
	} else if c.JWTSecret == "" {
		c.JWTSecret = DevJWTSecret
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout))
	}

	return errs
}

// MySQLDSN assembles the go-sql-driver DSN from the individual MYSQL_* settings.
func (c *Config) MySQLDSN() string {
	dsn := mysql.NewConfig()
	dsn.User = c.MySQLUser
	dsn.Passwd = c.MySQLPassword
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.MySQLHost, c.MySQLPort)
	dsn.DBName = c.MySQLDatabase
	dsn.ParseTime = true
	dsn.Loc = time.Local
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn.FormatDSN()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
