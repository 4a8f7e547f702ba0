package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Environment string
	AppURL      string

	// Redis configuration
	RedisURL          string
	RedisPoolSize     int
	RedisMinIdleConns int
	RedisMaxRetries   int
	RedisDialTimeout  time.Duration
	RedisReadTimeout  time.Duration
	RedisWriteTimeout time.Duration

	// Token configuration
	JWTSecret        string
	JWTRefreshSecret string
	TokenTTL         time.Duration
	RefreshTokenTTL  time.Duration
	VerifiedCacheTTL time.Duration

	// Session and OTP configuration
	SessionTTL    time.Duration
	OtpTTL        time.Duration
	OtpLength     int
	GeoIPDatabase string

	// Rate limiting for the auth endpoints
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Payment gateway configuration
	GatewayProvider     string
	PaystackBaseURL     string
	PaystackSecretKey   string
	PaystackCallbackURL string
	GatewayTimeout      time.Duration
	DefaultCurrency     string

	// Mail configuration
	MailFromAddress string
	MailFromName    string

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubUserID       string
	ActivityChannel    string

	// Dashboard
	DashboardCacheTTL time.Duration

	// Monitoring
	EnableMetrics   bool
	MetricsInterval time.Duration
}

// LoadConfig reads the process environment, after merging an optional .env file.
func LoadConfig() *Config {
	// a missing .env is fine, real deployments use the environment
	_ = godotenv.Load()

	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),
		AppURL:      getEnv("APP_URL", "http://localhost:8090"),

		// Redis
		RedisURL:          getEnv("REDIS_URL", "localhost:6379"),
		RedisPoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 50),
		RedisMinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		RedisMaxRetries:   getEnvAsInt("REDIS_MAX_RETRIES", 3),
		RedisDialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", "5s"),
		RedisReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", "3s"),
		RedisWriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", "3s"),

		// Tokens
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		TokenTTL:         getEnvAsDuration("TOKEN_TTL", "168h"),
		RefreshTokenTTL:  getEnvAsDuration("REFRESH_TOKEN_TTL", "720h"),
		VerifiedCacheTTL: getEnvAsDuration("AUTH_VERIFIED_CACHE_TTL", "30s"),

		// Sessions and OTP
		SessionTTL:    getEnvAsDuration("SESSION_TTL", "168h"),
		OtpTTL:        getEnvAsDuration("OTP_TTL", "5m"),
		OtpLength:     getEnvAsInt("OTP_LENGTH", 6),
		GeoIPDatabase: getEnv("GEOIP_DATABASE", ""),

		// Rate limiting
		AuthRateLimit:  getEnvAsInt("AUTH_RATE_LIMIT", 15),
		AuthRateWindow: getEnvAsDuration("AUTH_RATE_WINDOW", "1m"),

		// Payment gateway
		GatewayProvider:     getEnv("GATEWAY_PROVIDER", "paystack"),
		PaystackBaseURL:     getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		PaystackSecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackCallbackURL: getEnv("PAYSTACK_CALLBACK_URL", "http://localhost:3000/payment/callback"),
		GatewayTimeout:      getEnvAsDuration("GATEWAY_TIMEOUT", "10s"),
		DefaultCurrency:     getEnv("DEFAULT_CURRENCY", "NGN"),

		// Mail
		MailFromAddress: getEnv("MAIL_FROM_ADDRESS", "no-reply@localhost"),
		MailFromName:    getEnv("MAIL_FROM_NAME", "Event Tickets"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubUserID:       getEnv("PUBNUB_USER_ID", "event-ticketing-server"),
		ActivityChannel:    getEnv("ACTIVITY_CHANNEL", "admin-activity"),

		// Dashboard
		DashboardCacheTTL: getEnvAsDuration("DASHBOARD_CACHE_TTL", "60s"),

		// Monitoring
		EnableMetrics:   getEnvAsBool("ENABLE_METRICS", true),
		MetricsInterval: getEnvAsDuration("METRICS_INTERVAL", "30s"),
	}
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate rejects configurations that cannot run outside development.
func (c *Config) Validate() error {
	if c.IsDevelopment() {
		return nil
	}
	if c.JWTSecret == "" || c.JWTRefreshSecret == "" {
		return errors.New("config: JWT_SECRET and JWT_REFRESH_SECRET are required")
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return errors.New("config: JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.GatewayProvider == "paystack" && c.PaystackSecretKey == "" {
		return errors.New("config: PAYSTACK_SECRET_KEY is required")
	}
	return nil
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
