package config

import (
	"crypto/rsa"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

type Config struct {
	JWTPrivateKey    *rsa.PrivateKey
	JWTPublicKey     *rsa.PublicKey
	DatabaseURL      string
	RedisAddress     string
	RedisPassword    string
	Port             string
	SessionTTL       time.Duration
	DeleteConfirmTTL time.Duration
	AllowedOrigins   []string
	SentryDSN        string
	Version          string
}

func Load() *Config {
	loadDotEnv()

	privateKey, err := loadPrivateKey(getEnv("PRIVATE_KEY_PATH", "/etc/certs/private.pem"))
	if err != nil {
		panic("Failed to load private key: " + err.Error())
	}

	publicKey, err := loadPublicKey(getEnv("PUBLIC_KEY_PATH", "/etc/certs/public.pem"))
	if err != nil {
		panic("Failed to load public key: " + err.Error())
	}

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	return &Config{
		JWTPrivateKey:    privateKey,
		JWTPublicKey:     publicKey,
		DatabaseURL:      dbURL,
		RedisAddress:     getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		Port:             getEnv("PORT", "8080"),
		SessionTTL:       getDuration("SESSION_TTL", 24*time.Hour),
		DeleteConfirmTTL: getDuration("DELETE_CONFIRM_TTL", 2*time.Minute),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "*")),
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		Version:          getEnv("APP_VERSION", "unknown"),
	}
}

// loadDotEnv reads a local .env file when present. Variables already set in
// the environment win.
func loadDotEnv() {
	path := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("config: could not read %s: %v", path, err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("config: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPrivateKeyFromPEM(keyData)
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPublicKeyFromPEM(keyData)
}
