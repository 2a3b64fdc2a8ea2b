package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"SITEFUND_APP_NAME":                os.Getenv("SITEFUND_APP_NAME"),
		"SITEFUND_APP_ENV":                 os.Getenv("SITEFUND_APP_ENV"),
		"SITEFUND_APP_PORT":                os.Getenv("SITEFUND_APP_PORT"),
		"SITEFUND_DATABASE_HOST":           os.Getenv("SITEFUND_DATABASE_HOST"),
		"SITEFUND_DATABASE_PORT":           os.Getenv("SITEFUND_DATABASE_PORT"),
		"SITEFUND_DATABASE_USER":           os.Getenv("SITEFUND_DATABASE_USER"),
		"SITEFUND_DATABASE_PASSWORD":       os.Getenv("SITEFUND_DATABASE_PASSWORD"),
		"SITEFUND_DATABASE_DBNAME":         os.Getenv("SITEFUND_DATABASE_DBNAME"),
		"SITEFUND_DATABASE_SSLMODE":        os.Getenv("SITEFUND_DATABASE_SSLMODE"),
		"SITEFUND_DATABASE_MAX_OPEN_CONNS": os.Getenv("SITEFUND_DATABASE_MAX_OPEN_CONNS"),
		"SITEFUND_DATABASE_MAX_IDLE_CONNS": os.Getenv("SITEFUND_DATABASE_MAX_IDLE_CONNS"),
		"SITEFUND_JWT_SECRET":              os.Getenv("SITEFUND_JWT_SECRET"),
		"SITEFUND_EXTRACTION_TIMEOUT":      os.Getenv("SITEFUND_EXTRACTION_TIMEOUT"),
		"SITEFUND_CRON_ALLOW_LOCAL":        os.Getenv("SITEFUND_CRON_ALLOW_LOCAL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "sitefund-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "sitefund", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 10*time.Second, cfg.Extraction.Timeout)
		assert.Equal(t, 50*time.Minute, cfg.Notification.TokenTTL)
	})

	t.Run("loads values from environment variables with SITEFUND prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("SITEFUND_APP_NAME", "test-app")
		os.Setenv("SITEFUND_APP_ENV", "testing")
		os.Setenv("SITEFUND_APP_PORT", "9000")
		os.Setenv("SITEFUND_DATABASE_HOST", "testdb.local")
		os.Setenv("SITEFUND_DATABASE_PORT", "5433")
		os.Setenv("SITEFUND_DATABASE_USER", "testuser")
		os.Setenv("SITEFUND_DATABASE_PASSWORD", "testpass")
		os.Setenv("SITEFUND_DATABASE_DBNAME", "testdb")
		os.Setenv("SITEFUND_DATABASE_SSLMODE", "require")
		os.Setenv("SITEFUND_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("SITEFUND_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("SITEFUND_EXTRACTION_TIMEOUT", "5s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 5*time.Second, cfg.Extraction.Timeout)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("SITEFUND_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("SITEFUND_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("SITEFUND_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("SITEFUND_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"SITEFUND_APP_ENV":           os.Getenv("SITEFUND_APP_ENV"),
		"SITEFUND_JWT_SECRET":        os.Getenv("SITEFUND_JWT_SECRET"),
		"SITEFUND_DATABASE_PASSWORD": os.Getenv("SITEFUND_DATABASE_PASSWORD"),
		"SITEFUND_DATABASE_SSLMODE":  os.Getenv("SITEFUND_DATABASE_SSLMODE"),
		"SITEFUND_CRON_ALLOW_LOCAL":  os.Getenv("SITEFUND_CRON_ALLOW_LOCAL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	setProductionBase := func() {
		os.Setenv("SITEFUND_APP_ENV", "production")
		os.Setenv("SITEFUND_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		os.Setenv("SITEFUND_DATABASE_PASSWORD", "secret")
		os.Setenv("SITEFUND_DATABASE_SSLMODE", "require")
	}

	t.Run("requires jwt secret in production", func(t *testing.T) {
		clearEnv()
		setProductionBase()
		os.Unsetenv("SITEFUND_JWT_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required")
	})

	t.Run("rejects short jwt secret in production", func(t *testing.T) {
		clearEnv()
		setProductionBase()
		os.Setenv("SITEFUND_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("requires database password in production", func(t *testing.T) {
		clearEnv()
		setProductionBase()
		os.Unsetenv("SITEFUND_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required")
	})

	t.Run("rejects sslmode disable in production", func(t *testing.T) {
		clearEnv()
		setProductionBase()
		os.Setenv("SITEFUND_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("rejects local cron bypass in production", func(t *testing.T) {
		clearEnv()
		setProductionBase()
		os.Setenv("SITEFUND_CRON_ALLOW_LOCAL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cron.allow_local")
	})

	t.Run("valid production config passes", func(t *testing.T) {
		clearEnv()
		setProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "sitefund",
		Password: "p@ss/word",
		DBName:   "sitefund",
		SSLMode:  "require",
	}

	dsn := d.DSN()

	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// special characters must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "redis.internal", Port: 6380}
	assert.Equal(t, "redis.internal:6380", r.Addr())
}
