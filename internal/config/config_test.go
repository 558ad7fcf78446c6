package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("ACTIVATION_SECRET", "activation-secret-32-bytes-xxxxxxxx")
	t.Setenv("ACCESS_TOKEN", "access-secret-32-bytes-xxxxxxxxxxxx")
	t.Setenv("REFRESH_TOKEN", "refresh-secret-32-bytes-xxxxxxxxxxx")
}

func TestLoadConfig(t *testing.T) {
	setRequired(t)
	t.Setenv("MONGODB_DATABASE", "coursehub_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "coursehub_test", cfg.MongoDB.Database)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	require.Equal(t, 5*time.Minute, cfg.JWT.ActivationTTL)
}

func TestLoadConfig_TokenWindowDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 3000*time.Hour, cfg.JWT.AccessTokenTTL)
	require.Equal(t, 1200*24*time.Hour, cfg.JWT.RefreshTokenTTL)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfig_TokenWindowsFromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_EXPIRE", "2")
	t.Setenv("REFRESH_TOKEN_EXPIRE", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenTTL)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("REFRESH_TOKEN", "")

	_, err := LoadConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "REFRESH_TOKEN")
}

func TestRedisAddr_Unconfigured(t *testing.T) {
	require.Equal(t, "", RedisConfig{Port: "6379"}.Addr())
}
