package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "GO_ENV", "DB_DRIVER", "DATABASE_URL", "POSTGRES_USER", "POSTGRES_PASSWORD",
		"POSTGRES_DB", "POSTGRES_HOST", "POSTGRES_PORT", "SQLITE_PATH", "JWT_SECRET", "TOKEN_TTL",
		"KAFKA_BROKERS", "S3_BUCKET", "ADMIN_EMAIL", "ADMIN_PASSWORD", "AUTH_RATE_LIMIT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_RequiresJWTSecretInProduction(t *testing.T) {
	clearEnv(t)
	t.Setenv("GO_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://x")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_DevelopmentFallsBackToFlaggedSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("GO_ENV", "development")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.InsecureDevSecret)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoad_ExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("POSTGRES_USER", "app")
	t.Setenv("POSTGRES_DB", "market")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("TOKEN_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.InsecureDevSecret)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 5433, cfg.PostgresPort)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad port":      {"POSTGRES_PORT": "abc"},
		"bad driver":    {"DB_DRIVER": "mongo"},
		"missing user":  {"POSTGRES_DB": "market"},
		"admin half":    {"DB_DRIVER": "sqlite", "ADMIN_EMAIL": "root@example.com"},
		"negative ttl":  {"DB_DRIVER": "sqlite", "TOKEN_TTL": "-1h"},
		"bad ratelimit": {"AUTH_RATE_LIMIT": "many"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("JWT_SECRET", "x")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
