package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFiles are loaded, in order, before the environment is read. Variables
// already set in the process environment win.
var EnvFiles = []string{"config/local.env", ".env"}

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Security SecurityConfig
	CORS     CORSConfig
	Logging  LoggingConfig
	Media    MediaConfig
	Redis    RedisConfig
	Admin    AdminConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	JWTSecret string
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// MediaConfig describes where uploads live and how they are addressed.
type MediaConfig struct {
	Root        string
	BaseURL     string
	MaxUploadMB int
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	return int64(m.MaxUploadMB) << 20
}

// RedisConfig enables cross-process upload locks when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis server is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// AdminConfig is the account created by seed-admin.
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// Load reads configuration from env files and the environment. It does not
// validate; commands call the Validate variant matching what they need.
func Load() (*Config, error) {
	for _, file := range EnvFiles {
		_ = godotenv.Load(file)
	}

	cfg := &Config{}
	if err := cfg.loadDatabase(); err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}
	if err := cfg.loadServer(); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}
	if err := cfg.loadMedia(); err != nil {
		return nil, fmt.Errorf("load media config: %w", err)
	}
	if err := cfg.loadRedis(); err != nil {
		return nil, fmt.Errorf("load redis config: %w", err)
	}

	cfg.Security.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.CORS.AllowedOrigins = parseList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))
	cfg.Logging.Level = strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))
	cfg.Logging.Format = strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json"))
	cfg.Admin = AdminConfig{
		Username: os.Getenv("ADMIN_USERNAME"),
		Email:    os.Getenv("ADMIN_EMAIL"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}

	return cfg, nil
}

func (c *Config) loadDatabase() error {
	c.Database.URL = os.Getenv("DATABASE_URL")
	if c.Database.URL != "" {
		return nil
	}

	c.Database.Host = getEnvOrDefault("DB_HOST", "localhost")
	c.Database.User = os.Getenv("DB_USER")
	c.Database.Password = os.Getenv("DB_PASSWORD")
	c.Database.Name = os.Getenv("DB_NAME")
	c.Database.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")

	port, err := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432"))
	if err != nil {
		return fmt.Errorf("invalid DB_PORT: %w", err)
	}
	c.Database.Port = port

	if c.Database.User != "" && c.Database.Name != "" {
		c.Database.URL = fmt.Sprintf(
			"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Name,
			c.Database.SSLMode,
		)
	}
	return nil
}

func (c *Config) loadServer() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "3000"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	c.Server.Port = port
	c.Server.Host = os.Getenv("HOST")
	return nil
}

func (c *Config) loadMedia() error {
	maxMB, err := strconv.Atoi(getEnvOrDefault("MAX_UPLOAD_MB", "200"))
	if err != nil {
		return fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
	}
	c.Media = MediaConfig{
		Root:        getEnvOrDefault("ASSET_ROOT", "uploads"),
		BaseURL:     getEnvOrDefault("ASSET_BASE_URL", "/uploads"),
		MaxUploadMB: maxMB,
	}
	return nil
}

func (c *Config) loadRedis() error {
	db, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	c.Redis = RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}
	return nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	return joinProblems(c.problems())
}

// ValidateServer additionally checks what the HTTP server needs.
func (c *Config) ValidateServer() error {
	problems := c.problems()

	if c.Security.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if len(c.Security.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 characters")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}
	if c.Media.MaxUploadMB < 1 {
		problems = append(problems, "MAX_UPLOAD_MB must be positive")
	}
	if !strings.HasPrefix(c.Media.BaseURL, "/") && !strings.Contains(c.Media.BaseURL, "://") {
		problems = append(problems, "ASSET_BASE_URL must be a path starting with / or an absolute URL")
	}

	return joinProblems(problems)
}

// ValidateAdmin checks the seed-admin settings.
func (c *Config) ValidateAdmin() error {
	problems := c.problems()
	if c.Admin.Username == "" {
		problems = append(problems, "ADMIN_USERNAME is required")
	}
	if c.Admin.Password == "" {
		problems = append(problems, "ADMIN_PASSWORD is required")
	}
	return joinProblems(problems)
}

func (c *Config) problems() []string {
	var problems []string

	if c.Database.URL == "" {
		problems = append(problems, "DATABASE_URL is required (or DB_HOST, DB_USER, DB_NAME)")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		problems = append(problems, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		problems = append(problems, "LOG_FORMAT must be one of: json, text")
	}

	return problems
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
