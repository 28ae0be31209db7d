// Package config содержит логику чтения конфигурации сервиса управления поставщиками.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultRunAddress      = "localhost:8080"
	defaultLogLevel        = "info"
	defaultAppEnv          = "production"
	defaultShutdownTimeout = 5 * time.Second
)

// ErrNoDatabaseURI возвращается Validate, если адрес базы данных не задан.
var ErrNoDatabaseURI = errors.New("database URI is required")

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	DatabaseURI     string        `env:"DATABASE_URI"`
	LogLevel        string        `env:"LOG_LEVEL"`
	AppEnv          string        `env:"APP_ENV"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// Parse считывает конфигурацию из файла .env, флагов командной строки и
// переменных окружения. Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	fromEnv := &Config{}
	if err := env.Parse(fromEnv); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg := &Config{}
	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level (debug, info, warn, error)")
	flag.StringVar(&cfg.AppEnv, "e", defaultAppEnv, "application environment (development, production)")
	flag.DurationVar(&cfg.ShutdownTimeout, "t", defaultShutdownTimeout, "graceful shutdown timeout")

	flag.Parse()

	if fromEnv.RunAddress != "" {
		cfg.RunAddress = fromEnv.RunAddress
	}
	if fromEnv.DatabaseURI != "" {
		cfg.DatabaseURI = fromEnv.DatabaseURI
	}
	if fromEnv.LogLevel != "" {
		cfg.LogLevel = fromEnv.LogLevel
	}
	if fromEnv.AppEnv != "" {
		cfg.AppEnv = fromEnv.AppEnv
	}
	if fromEnv.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = fromEnv.ShutdownTimeout
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	return cfg, nil
}

// Validate проверяет параметры, без которых сервис не может стартовать.
func (c *Config) Validate() error {
	if c.DatabaseURI == "" {
		return ErrNoDatabaseURI
	}
	return nil
}
