package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_ENABLED", "")
	t.Setenv("TERMII_SENDER_ID", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.False(t, cfg.Notifications.KafkaEnabled)
	assert.Equal(t, "eWait", cfg.SMS.SenderID)
	assert.Equal(t, 15*time.Minute, cfg.Jobs.StatsRollupInterval)
	assert.Contains(t, cfg.Database.DSN, "dbname=ewait_db")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("JWT_EXPIRES_IN", "60")
	t.Setenv("APP_URL", "https://ewait.example/")
	t.Setenv("GIN_MODE", "release")

	cfg := Load()

	assert.True(t, cfg.Notifications.KafkaEnabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notifications.KafkaBrokers)
	assert.Equal(t, time.Minute, cfg.JWT.JWTExpiresIn)
	assert.Equal(t, "https://ewait.example", cfg.AppURL)
	assert.True(t, cfg.IsProduction())
}

func TestGetIntEnvFallsBackOnGarbage(t *testing.T) {
	t.Setenv("NUM_CONSUMER_WORKERS", "lots")
	assert.Equal(t, 3, getIntEnv("NUM_CONSUMER_WORKERS", 3))
}
