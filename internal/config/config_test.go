package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_IP", "SERVER_PORT", "CORS_ORIGIN", "DATABASE_URL", "REDIS_URL",
		"HASH_ROUNDS", "JWT_SECRET", "USE_MAIL", "USE_SMS", "USE_REPORT",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, "127.0.0.1", cfg.Server.IP)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Auth.HashRounds)
	assert.False(t, cfg.Mail.Enabled)
	assert.False(t, cfg.PSN.UseErrReport)
}

func TestLoadOverrides(t *testing.T) {
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("HASH_ROUNDS", "12")
	os.Setenv("USE_MAIL", "true")
	defer func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("HASH_ROUNDS")
		os.Unsetenv("USE_MAIL")
	}()

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 12, cfg.Auth.HashRounds)
	assert.True(t, cfg.Mail.Enabled)
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	os.Setenv("HASH_ROUNDS", "not-a-number")
	defer os.Unsetenv("HASH_ROUNDS")

	cfg := Load()

	assert.Equal(t, 10, cfg.Auth.HashRounds)
}
