package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvFile(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "JWT_SECRET", "SERVICE_NAME", "ES_ORDER_INDEX", "SERVER_PORT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), ".env")
	body := "DATABASE_URL=postgres://shop@localhost/orders\nJWT_SECRET=s3cret\nES_ORDER_INDEX=orders_v2\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg := Load(path)
	assert.Equal(t, "postgres://shop@localhost/orders", cfg.DatabaseURL)
	assert.Equal(t, []byte("s3cret"), cfg.JWTAccessSecret)
	assert.Equal(t, "orders_v2", cfg.ESOrderIndex)
	assert.Equal(t, "order", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.ServerPort)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:orders.db")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVICE_NAME", "order-eu")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\n"), 0o600))

	cfg := Load(path)
	assert.Equal(t, []byte("from-env"), cfg.JWTAccessSecret)
	assert.Equal(t, "order-eu", cfg.ServiceName)
}
