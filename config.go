package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr            string
	PostgresURL         string
	RedisAddr           string
	CollaboratorTimeout time.Duration
	JaegerEndpoint      string
	LogLevel            logrus.Level
}

func LoadConfig() (Config, error) {
	config := Config{
		HTTPAddr:            getenv("HTTP_ADDR", ":8080"),
		PostgresURL:         os.Getenv("POSTGRES_URL"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		CollaboratorTimeout: 2 * time.Second,
		JaegerEndpoint:      os.Getenv("JAEGER_ENDPOINT"),
		LogLevel:            logrus.InfoLevel,
	}

	if v := os.Getenv("COLLABORATOR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid COLLABORATOR_TIMEOUT %q", v)
		}
		config.CollaboratorTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		config.LogLevel = level
	}

	return config, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
