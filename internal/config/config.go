package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Security   SecurityConfig
	Hackathon  HackathonConfig
	Automation AutomationConfig
	Mail       MailConfig
	AI         AIConfig
	Log        LogConfig
	CORS       CORSConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL            string
	Password       string
	LockTTL        time.Duration
	LockWait       time.Duration
	IdempotencyTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// SecurityConfig holds security encryption keys
type SecurityConfig struct {
	SessionEncryptionKey string
	SessionTTL           time.Duration
}

// HackathonConfig holds the event calendar and membership timings.
// A zero deadline disables the sweeper task that depends on it.
type HackathonConfig struct {
	TeamFormationDeadline time.Time
	EndDate               time.Time
	InviteTTL             time.Duration
	SoloBoostAfter        time.Duration
}

// AutomationConfig controls the scheduled sweeper.
type AutomationConfig struct {
	Enabled bool
	Cron    string
}

// MailConfig holds SMTP settings for invite notifications.
// An empty Host makes the notifier log instead of send.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// AIConfig holds the generative-text collaborator settings.
type AIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// LogConfig holds log output settings.
type LogConfig struct {
	File string
}

// CORSConfig holds the allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvAsInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "teamsync"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),

			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:            getEnv("REDIS_URL", "redis://localhost:6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			LockTTL:        getEnvAsDuration("TEAM_LOCK_TTL", 10*time.Second),
			LockWait:       getEnvAsDuration("TEAM_LOCK_WAIT", 5*time.Second),
			IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
			SessionTTL:           getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
		},
		Hackathon: HackathonConfig{
			TeamFormationDeadline: getEnvAsTime("TEAM_FORMATION_DEADLINE", time.Time{}),
			EndDate:               getEnvAsTime("HACKATHON_END_DATE", time.Time{}),
			InviteTTL:             getEnvAsDuration("INVITE_TTL", 48*time.Hour),
			SoloBoostAfter:        getEnvAsDuration("SOLO_BOOST_AFTER", 72*time.Hour),
		},
		Automation: AutomationConfig{
			Enabled: getEnvAsBool("AUTOMATION_ENABLED", true),
			Cron:    getEnv("AUTOMATION_CRON", "@every 1h"),
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "TeamSync <no-reply@teamsync.local>"),
		},
		AI: AIConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 15*time.Second),
		},
		Log: LogConfig{
			File: getEnv("LOG_FILE", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("FRONTEND_URL", []string{"http://localhost:5173"}),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsTime parses RFC3339, falling back to a bare date (YYYY-MM-DD, UTC).
func getEnvAsTime(key string, defaultValue time.Time) time.Time {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC()
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
