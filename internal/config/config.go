package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
	LogLevel  string
}

type ServerConfig struct {
	Port           string
	Host           string
	Environment    string
	// AllowedOrigins may call the API with credentials (CORS).
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

// JWTConfig carries the three signing secrets and the session windows.
type JWTConfig struct {
	ActivationSecret string
	AccessSecret     string
	RefreshSecret    string
	ActivationTTL    time.Duration
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
}

type CookieConfig struct {
	Secure bool
	Domain string
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

type KafkaConfig struct {
	Brokers   []string
	MailTopic string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("MONGODB_DATABASE", "coursehub")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	// access window in hours, refresh window in days
	v.SetDefault("ACCESS_TOKEN_EXPIRE", 3000)
	v.SetDefault("REFRESH_TOKEN_EXPIRE", 1200)
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("KAFKA_MAIL_TOPIC", "mail.activation")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			Environment:    v.GetString("SERVER_ENVIRONMENT"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			ActivationSecret: v.GetString("ACTIVATION_SECRET"),
			AccessSecret:     v.GetString("ACCESS_TOKEN"),
			RefreshSecret:    v.GetString("REFRESH_TOKEN"),
			ActivationTTL:    5 * time.Minute,
			AccessTokenTTL:   time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE")) * time.Hour,
			RefreshTokenTTL:  time.Duration(v.GetInt("REFRESH_TOKEN_EXPIRE")) * 24 * time.Hour,
		},
		Cookie: CookieConfig{
			Secure: v.GetBool("COOKIE_SECURE"),
			Domain: v.GetString("COOKIE_DOMAIN"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Kafka: KafkaConfig{
			Brokers:   splitList(v.GetString("KAFKA_BROKERS")),
			MailTopic: v.GetString("KAFKA_MAIL_TOPIC"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	required := map[string]string{
		"MONGODB_URI":       c.MongoDB.URI,
		"ACTIVATION_SECRET": c.JWT.ActivationSecret,
		"ACCESS_TOKEN":      c.JWT.AccessSecret,
		"REFRESH_TOKEN":     c.JWT.RefreshSecret,
	}
	for _, key := range []string{"MONGODB_URI", "ACTIVATION_SECRET", "ACCESS_TOKEN", "REFRESH_TOKEN"} {
		if required[key] == "" {
			return fmt.Errorf("environment variable %s is required", key)
		}
	}
	if c.JWT.AccessTokenTTL <= 0 || c.JWT.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token windows must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
