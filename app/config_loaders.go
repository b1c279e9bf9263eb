package mingle

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type ConfigLoader interface {
	Load() (*Config, error)
}

// EnvConfigLoader loads the configuration from environment variables,
// reading a .env file first when one is present. The SECRET environment
// variable is expected to be a base64-encoded string. ALLOWED_ORIGINS is a
// comma-separated list of origins that are allowed to connect to the server.
type EnvConfigLoader struct {
}

func (l *EnvConfigLoader) Load() (*Config, error) {
	// .env is optional; real environment variables always apply
	godotenv.Load()

	config := &Config{}

	port, _ := strconv.Atoi(getEnv("PORT"))
	config.Port = port
	config.Hostname = getEnv("HOSTNAME")
	config.Mode = Mode(getEnv("MODE"))

	secret, err := base64.StdEncoding.DecodeString(getEnv("SECRET"))
	if err != nil {
		return nil, errors.New("invalid secret value")
	}
	config.Auth.Secret = secret

	config.SQLite.File = getEnv("SQLITE_FILE")
	config.SQLite.Migrations = getEnv("MIGRATION_DIR")
	config.Uploads.Dir = getEnv("UPLOAD_DIR")
	config.TLS.Crt = getEnv("TLS_CRT")
	config.TLS.Key = getEnv("TLS_KEY")
	config.AllowedOrigins = strings.Split(getEnv("ALLOWED_ORIGINS"), ",")

	return config, nil
}

// DefaultConfigLoader produces a runnable local configuration with a random
// signing secret.
type DefaultConfigLoader struct {
}

func (l *DefaultConfigLoader) Load() (*Config, error) {
	secret := make([]byte, 32)
	_, err := rand.Read(secret)
	if err != nil {
		return nil, errors.New("failed to generate secret")
	}

	config := &Config{}
	config.Port = 8080
	config.Hostname = "0.0.0.0"
	config.Mode = DevMode
	config.Auth.Secret = secret
	config.SQLite.File = "./mingle.db"
	config.SQLite.Migrations = "./migrations"
	config.Uploads.Dir = "./public/uploads"
	config.AllowedOrigins = []string{"*"}
	return config, nil
}

func getEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return ""
	}
	return value
}
