package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	API       APIConfig
	Session   SessionConfig
	WebSocket WebSocketConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
	// TimeZone is used to convert wire timestamps to and from form values.
	TimeZone *time.Location
}

type APIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	Token      string
	Username   string
	Password   string
	RememberMe bool
	// AppName is the prefix of the X-<app>-alert headers sent by the API.
	AppName   string
	UsersPath string
}

type SessionConfig struct {
	CookieName  string
	IdleTimeout time.Duration
	MaxSessions int
}

type WebSocketConfig struct {
	MaxConnPerSession int
	WriteWait         time.Duration
	PongWait          time.Duration
	PingPeriod        time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	apiTimeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}

	idle, err := time.ParseDuration(getEnv("SESSION_IDLE_TIMEOUT", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT: %w", err)
	}

	loc, err := time.LoadLocation(getEnv("TZ_NAME", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TZ_NAME: %w", err)
	}

	baseURL := strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}

	return &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "9000"),
			Host:     getEnv("HOST", "0.0.0.0"),
			Env:      getEnv("ENV", "development"),
			TimeZone: loc,
		},
		API: APIConfig{
			BaseURL:    baseURL,
			Timeout:    apiTimeout,
			Token:      getEnv("API_TOKEN", ""),
			Username:   getEnv("API_USERNAME", ""),
			Password:   getEnv("API_PASSWORD", ""),
			RememberMe: getEnvAsBool("API_REMEMBER_ME", false),
			AppName:    getEnv("API_APP_NAME", "notebookApp"),
			UsersPath:  getEnv("USERS_API_PATH", "/api/users"),
		},
		Session: SessionConfig{
			CookieName:  getEnv("SESSION_COOKIE", "notebook_session"),
			IdleTimeout: idle,
			MaxSessions: getEnvAsInt("SESSION_MAX", 1000),
		},
		WebSocket: WebSocketConfig{
			MaxConnPerSession: getEnvAsInt("WS_MAX_CONN_PER_SESSION", 5),
			WriteWait:         10 * time.Second,
			PongWait:          60 * time.Second,
			PingPeriod:        54 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
