package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultGoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	DefaultTokenTTL      = 7 * 24 * time.Hour
)

var ErrMissingJWTSecret = errors.New("config: JWT_SECRET is required")

type Config struct {
	Port string

	// DatabaseDSN vacío => store in-memory (modo dev).
	DatabaseDSN string

	JWTSecret string
	TokenTTL  time.Duration

	GoogleClientID string
	GoogleJWKSURL  string

	BcryptCost     int
	RequestTimeout time.Duration

	// Admin inicial (opcional). Se crea/asegura al arrancar.
	AdminName     string
	AdminEmail    string
	AdminPassword string

	ServiceName string
}

// Load lee .env (si existe) y luego variables de entorno.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:           getenv("PORT", "3000"),
		DatabaseDSN:    strings.TrimSpace(os.Getenv("DB_DSN")),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       readDuration("TOKEN_TTL", DefaultTokenTTL),
		GoogleClientID: strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		GoogleJWKSURL:  getenv("GOOGLE_JWKS_URL", DefaultGoogleJWKSURL),
		BcryptCost:     readInt("BCRYPT_COST", 10),
		RequestTimeout: readDuration("REQUEST_TIMEOUT", 10*time.Second),
		AdminName:      getenv("ADMIN_NAME", "Administrador"),
		AdminEmail:     strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		ServiceName:    getenv("APP_NAME", "veterinaria-ica"),
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return Config{}, ErrMissingJWTSecret
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func readInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
