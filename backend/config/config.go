package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ServerPort string

	DBDriver   string // postgres, sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	// DatabaseURL overrides the individual DB_* settings. For the sqlite
	// driver it is the database file path or DSN.
	DatabaseURL string

	SessionSecret  string
	SessionTTL     time.Duration
	CookieSecure   bool
	PasswordMinLen int

	AppBaseURL     string
	AllowedOrigins string

	EmailUser     string
	EmailPassword string
	SMTPHost      string
	SMTPPort      int
	ContactEmail  string

	RateLimitPerMinute int
	RequestTimeout     time.Duration
	TokenSweepInterval time.Duration
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:        env,
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "advocatr"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		SessionSecret:  getEnv("SESSION_SECRET", getEnv("JWT_SECRET", "secret")),
		SessionTTL:     getDurationEnv("SESSION_TTL", 72*time.Hour),
		CookieSecure:   getBoolEnv("COOKIE_SECURE", env == "production"),
		PasswordMinLen: getIntEnv("PASSWORD_MIN_LENGTH", 6),

		AppBaseURL:     strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:5173"), "/"),
		AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		EmailUser:     getEnv("EMAIL_USER", ""),
		EmailPassword: getEnv("EMAIL_PASSWORD", ""),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getIntEnv("SMTP_PORT", 587),
		ContactEmail:  getEnv("CONTACT_EMAIL", "contact@advocatr.com"),

		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MIN", 10),
		RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", 10*time.Second),
		TokenSweepInterval: getDurationEnv("TOKEN_SWEEP_INTERVAL", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.IsProduction() && c.SessionSecret == "secret" {
		return fmt.Errorf("SESSION_SECRET must be changed in production")
	}
	if c.PasswordMinLen < 1 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBDriver == "sqlite" {
		return "advocatr.db"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) MailEnabled() bool {
	return c.EmailUser != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	parsed, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getBoolEnv(key string, defaultValue bool) bool {
	parsed, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	parsed, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return parsed
}
