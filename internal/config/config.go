package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode        string
	Port           string
	ServiceName    string
	LogLevel       string
	FrontendURL    string
	AdminEmail     string
	AllowedOrigins string
	EnvFileLoaded  bool

	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Auth     AuthConfig
	Mail     MailConfig
	Redis    RedisConfig
	Paystack PaystackConfig
	Seed     SeedConfig
	Cron     CronConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql | postgres | memory
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds identity token configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// AuthConfig holds account workflow settings
type AuthConfig struct {
	BcryptCost               int
	RequireEmailVerification bool
	ResetTokenTTL            time.Duration
}

// MailConfig holds SMTP and outbound queue settings
type MailConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	From        string
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Enabled reports whether an SMTP host is configured
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

// RedisConfig holds cache / pub-sub settings
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	CacheTTL time.Duration
}

// Enabled reports whether a Redis address is configured
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// PaystackConfig holds payment gateway settings
type PaystackConfig struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	Timeout     time.Duration
}

// SeedConfig holds the bootstrap admin account
type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// CronConfig holds background job schedules
type CronConfig struct {
	ResetTokenPurge string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional; production injects real environment variables
	envLoaded := godotenv.Load() == nil

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	jwtCfg, err := loadJWTConfig()
	if err != nil {
		return nil, err
	}

	dbCfg := loadDatabaseConfig()
	switch dbCfg.Driver {
	case "mysql", "postgres", "memory":
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql', 'postgres' or 'memory')", dbCfg.Driver)
	}

	config := &Config{
		AppMode:        appMode,
		Port:           getEnv("PORT", "5000"),
		ServiceName:    getEnv("SERVICE_NAME", "atw-marketplace"),
		LogLevel:       getEnv("LOG_LEVEL", defaultLogLevel(appMode)),
		FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		AdminEmail:     getEnv("ADMIN_EMAIL", ""),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
		EnvFileLoaded:  envLoaded,
		Database:       dbCfg,
		JWT:            jwtCfg,
		Cookie:         loadCookieConfig(appMode),
		Auth:           loadAuthConfig(),
		Mail:           loadMailConfig(),
		Redis:          loadRedisConfig(),
		Paystack:       loadPaystackConfig(),
		Seed: SeedConfig{
			AdminName:     getEnv("SEED_ADMIN_NAME", "Administrator"),
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
		},
		Cron: CronConfig{
			ResetTokenPurge: getEnv("CRON_RESET_TOKEN_PURGE", "@every 15m"),
		},
	}

	if config.IsProd() && config.JWT.Secret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in prod mode")
	}

	return config, nil
}

func defaultLogLevel(mode string) string {
	if mode == "prod" {
		return "info"
	}
	return "debug"
}

// loadDatabaseConfig loads database config; the port default follows the driver
func loadDatabaseConfig() DatabaseConfig {
	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	port := "3306"
	if driver == "postgres" {
		port = "5432"
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", port),
		User:     getEnv("DB_USER", "root"),
		Password: getEnv("DB_PASS", ""),
		DBName:   getEnv("DB_NAME", "atw_marketplace"),
	}
}

const defaultJWTSecret = "default_secret"

// loadJWTConfig loads JWT config
func loadJWTConfig() (JWTConfig, error) {
	ttl, err := ParseDuration(getEnv("JWT_EXPIRES_IN", "2h"))
	if err != nil {
		return JWTConfig{}, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	return JWTConfig{
		Secret:    getEnv("JWT_SECRET", defaultJWTSecret),
		ExpiresIn: ttl,
	}, nil
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure := getBool("COOKIE_SECURE", mode == "prod")

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		BcryptCost:               getInt("BCRYPT_COST", 10),
		RequireEmailVerification: getBool("REQUIRE_EMAIL_VERIFICATION", true),
		ResetTokenTTL:            getDuration("RESET_TOKEN_TTL", time.Hour),
	}
}

func loadMailConfig() MailConfig {
	user := getEnv("EMAIL_USER", "")
	return MailConfig{
		Host:        getEnv("SMTP_HOST", ""),
		Port:        getInt("SMTP_PORT", 587),
		User:        user,
		Password:    getEnv("EMAIL_PASS", ""),
		From:        getEnv("EMAIL_FROM", user),
		Workers:     getInt("MAIL_WORKERS", 2),
		QueueSize:   getInt("MAIL_QUEUE_SIZE", 100),
		SendTimeout: getDuration("MAIL_SEND_TIMEOUT", 15*time.Second),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Username: getEnv("REDIS_USERNAME", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getInt("REDIS_DB", 0),
		CacheTTL: getDuration("CACHE_TTL", 5*time.Minute),
	}
}

func loadPaystackConfig() PaystackConfig {
	return PaystackConfig{
		SecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
		BaseURL:     strings.TrimRight(getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"), "/"),
		CallbackURL: getEnv("PAYSTACK_CALLBACK_URL", ""),
		Timeout:     getDuration("PAYSTACK_TIMEOUT", 10*time.Second),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

// ParseDuration accepts Go durations ("90m", "2h") plus a day suffix ("30d")
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", s)
	}
	return d, nil
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	if c.AllowedOrigins == "" {
		if c.IsDev() {
			return "*"
		}
		return c.FrontendURL
	}
	return c.AllowedOrigins
}
