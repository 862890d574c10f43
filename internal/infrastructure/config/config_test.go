package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"VESTI_APP_NAME":                os.Getenv("VESTI_APP_NAME"),
		"VESTI_APP_ENV":                 os.Getenv("VESTI_APP_ENV"),
		"VESTI_APP_PORT":                os.Getenv("VESTI_APP_PORT"),
		"VESTI_DATABASE_HOST":           os.Getenv("VESTI_DATABASE_HOST"),
		"VESTI_DATABASE_PORT":           os.Getenv("VESTI_DATABASE_PORT"),
		"VESTI_DATABASE_USER":           os.Getenv("VESTI_DATABASE_USER"),
		"VESTI_DATABASE_PASSWORD":       os.Getenv("VESTI_DATABASE_PASSWORD"),
		"VESTI_DATABASE_DBNAME":         os.Getenv("VESTI_DATABASE_DBNAME"),
		"VESTI_DATABASE_SSLMODE":        os.Getenv("VESTI_DATABASE_SSLMODE"),
		"VESTI_DATABASE_MAX_OPEN_CONNS": os.Getenv("VESTI_DATABASE_MAX_OPEN_CONNS"),
		"VESTI_DATABASE_MAX_IDLE_CONNS": os.Getenv("VESTI_DATABASE_MAX_IDLE_CONNS"),
		"VESTI_SHIPPING_ORIGIN_CEP":     os.Getenv("VESTI_SHIPPING_ORIGIN_CEP"),
		"VESTI_JWT_SECRET":              os.Getenv("VESTI_JWT_SECRET"),
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

		assert.Equal(t, "vesti-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "Vesti", cfg.App.StoreName)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "vesti", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "https://api.mercadopago.com", cfg.Payment.BaseURL)
		assert.Equal(t, 12, cfg.Payment.MaxInstallments)
		assert.Equal(t, []string{"SEDEX", "PAC"}, cfg.Shipping.Services)
		assert.InDelta(t, 25.00, cfg.Shipping.FallbackRate, 0.001)
		assert.Equal(t, 10, cfg.Shipping.FallbackDays)
	})

	t.Run("loads values from environment variables with VESTI prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("VESTI_APP_NAME", "test-app")
		os.Setenv("VESTI_APP_ENV", "testing")
		os.Setenv("VESTI_APP_PORT", "9000")
		os.Setenv("VESTI_DATABASE_HOST", "testdb.local")
		os.Setenv("VESTI_DATABASE_PORT", "5433")
		os.Setenv("VESTI_DATABASE_USER", "testuser")
		os.Setenv("VESTI_DATABASE_PASSWORD", "testpass")
		os.Setenv("VESTI_DATABASE_DBNAME", "testdb")
		os.Setenv("VESTI_DATABASE_SSLMODE", "require")
		os.Setenv("VESTI_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("VESTI_DATABASE_MAX_IDLE_CONNS", "10")

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
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("VESTI_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("VESTI_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("VESTI_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates origin CEP length", func(t *testing.T) {
		clearEnv()
		os.Setenv("VESTI_SHIPPING_ORIGIN_CEP", "0131")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "origin_cep")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"VESTI_APP_ENV":                         os.Getenv("VESTI_APP_ENV"),
		"VESTI_JWT_SECRET":                      os.Getenv("VESTI_JWT_SECRET"),
		"VESTI_DATABASE_PASSWORD":               os.Getenv("VESTI_DATABASE_PASSWORD"),
		"VESTI_DATABASE_SSLMODE":                os.Getenv("VESTI_DATABASE_SSLMODE"),
		"VESTI_PAYMENT_ACCESS_TOKEN":            os.Getenv("VESTI_PAYMENT_ACCESS_TOKEN"),
		"VESTI_PAYMENT_WEBHOOK_SECRET":          os.Getenv("VESTI_PAYMENT_WEBHOOK_SECRET"),
		"VESTI_PAYMENT_ALLOW_UNSIGNED_WEBHOOKS": os.Getenv("VESTI_PAYMENT_ALLOW_UNSIGNED_WEBHOOKS"),
		"VESTI_PAYMENT_NOTIFICATION_URL":        os.Getenv("VESTI_PAYMENT_NOTIFICATION_URL"),
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

	// Helper to set valid production base config
	setValidProductionBase := func() {
		os.Setenv("VESTI_APP_ENV", "production")
		os.Setenv("VESTI_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("VESTI_DATABASE_PASSWORD", "secure-password")
		os.Setenv("VESTI_DATABASE_SSLMODE", "require")
		os.Setenv("VESTI_PAYMENT_ACCESS_TOKEN", "APP_USR-test-token")
		os.Setenv("VESTI_PAYMENT_WEBHOOK_SECRET", "webhook-secret")
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("VESTI_JWT_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("VESTI_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("VESTI_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("VESTI_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("requires payment credentials in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("VESTI_PAYMENT_ACCESS_TOKEN")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payment.access_token is required in production")
	})

	t.Run("requires payment webhook secret in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("VESTI_PAYMENT_WEBHOOK_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payment.webhook_secret is required in production")
	})

	t.Run("rejects unsigned webhooks in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("VESTI_PAYMENT_ALLOW_UNSIGNED_WEBHOOKS", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "allow_unsigned_webhooks must be false in production")
	})

	t.Run("rejects plain http notification URL in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("VESTI_PAYMENT_NOTIFICATION_URL", "http://store.example.com/webhook")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "notification_url must use https")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
		assert.True(t, cfg.IsProduction())
	})
}

func TestConfigWarnings(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.Warnings())

	cfg.Payment.AllowUnsignedWebhooks = true
	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "unsigned payment webhooks")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
