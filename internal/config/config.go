package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port             string
	AllowedOrigins   []string
	JWTSecret        string
	OrderServiceURL  string
	PaymentBridgeURL string
	ReadTimeout      int
	WriteTimeout     int
	ShutdownTimeout  int
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8081"),
		AllowedOrigins:   getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		OrderServiceURL:  getEnv("ORDER_SERVICE_URL", "http://localhost:8080"),
		PaymentBridgeURL: getEnv("PAYMENT_BRIDGE_URL", "http://localhost:8082"),
		ReadTimeout:      getEnvAsInt("READ_TIMEOUT", 15),
		WriteTimeout:     getEnvAsInt("WRITE_TIMEOUT", 15),
		ShutdownTimeout:  getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsSlice(key string, fallback []string) []string {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	return strings.Split(s, ",")
}
