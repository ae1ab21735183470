package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	LLM    LLMConfig    `yaml:"llm"`
	Auth   AuthConfig   `yaml:"auth"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type LLMConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "crisp.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		LLM: LLMConfig{
			Model:          "gemini-2.5-flash",
			TimeoutSeconds: 30,
		},
		Auth: AuthConfig{
			TokenTTLHours: 24,
			AdminUsername: "admin",
		},
	}

	if path := os.Getenv("CRISP_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("CRISP_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("CRISP_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CRISP_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("CRISP_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("CRISP_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if key := os.Getenv("CRISP_GEMINI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if model := os.Getenv("CRISP_GEMINI_MODEL"); model != "" {
		cfg.LLM.Model = model
	}
	if secret := os.Getenv("CRISP_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if username := os.Getenv("CRISP_ADMIN_USERNAME"); username != "" {
		cfg.Auth.AdminUsername = username
	}
	if password := os.Getenv("CRISP_ADMIN_PASSWORD"); password != "" {
		cfg.Auth.AdminPassword = password
	}

	if cfg.LLM.APIKey == "" {
		return Config{}, fmt.Errorf("CRISP_GEMINI_API_KEY is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("CRISP_JWT_SECRET is required")
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
