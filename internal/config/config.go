package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Redis     RedisConfig     `json:"redis"`
	Database  DatabaseConfig  `json:"database"`
	Auth      AuthConfig      `json:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func (r RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

type AuthConfig struct {
	JWTSecret   string `json:"-"`
	ExpiryHours int    `json:"expiry_hours"`
}

type RateLimitConfig struct {
	// EnforceBurst turns on the per-client burst guard in addition to the
	// window limits. Off by default.
	EnforceBurst bool `json:"enforce_burst"`
}

func Load(path string) (*Config, error) {
	config := &Config{
		Server: ServerConfig{Port: "8080", Environment: "development"},
		Redis:  RedisConfig{Host: "localhost", Port: "6379"},
		Auth:   AuthConfig{ExpiryHours: 24},
	}

	file, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// Secrets and deploy-specific values come from the environment.
	if v := os.Getenv("PORT"); v != "" {
		config.Server.Port = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		config.Server.Environment = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		config.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		config.Redis.Port = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			config.Redis.DB = db
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Database.DSN = v
	}
	config.Auth.JWTSecret = os.Getenv("JWT_SECRET")

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if config.Database.DSN == "" {
		return nil, fmt.Errorf("database DSN is required (DATABASE_URL or config file)")
	}

	return config, nil
}
