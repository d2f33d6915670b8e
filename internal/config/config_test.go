package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ModeTUI, cfg.Mode)
	assert.Empty(t, cfg.SeedDBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.DeliveredAfter)
	assert.Equal(t, 2*time.Second, cfg.ReadAfter)
}

func TestLoad_envThenFlags(t *testing.T) {
	t.Setenv("PORTAL_MODE", "headless")
	t.Setenv("PORTAL_DELIVERED_AFTER", "250ms")
	t.Setenv("PORTAL_READ_AFTER", "750ms")
	t.Setenv("PORTAL_SEED_DB", "/tmp/seed.db")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ModeHeadless, cfg.Mode)
	assert.Equal(t, 250*time.Millisecond, cfg.DeliveredAfter)
	assert.Equal(t, 750*time.Millisecond, cfg.ReadAfter)
	assert.Equal(t, "/tmp/seed.db", cfg.SeedDBPath)

	cfg, err = Load([]string{"-mode", "MCP", "-read-after", "3s"})
	require.NoError(t, err)
	assert.Equal(t, ModeMCP, cfg.Mode, "flags win and are case-insensitive")
	assert.Equal(t, 3*time.Second, cfg.ReadAfter)
}

func TestLoad_dotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.env")
	require.NoError(t, os.WriteFile(path, []byte("PORTAL_SESSION_NAME=classroom\n"), 0o600))
	t.Setenv("PORTAL_ENV_FILE", path)
	t.Cleanup(func() { os.Unsetenv("PORTAL_SESSION_NAME") })

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "classroom", cfg.SessionName)
}

func TestLoad_missingExplicitEnvFile(t *testing.T) {
	t.Setenv("PORTAL_ENV_FILE", filepath.Join(t.TempDir(), "nope.env"))

	_, err := Load(nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Mode: ModeTUI, DeliveredAfter: time.Second, ReadAfter: 2 * time.Second}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown mode", mutate: func(c *Config) { c.Mode = "server" }, wantErr: true},
		{name: "zero delivered", mutate: func(c *Config) { c.DeliveredAfter = 0 }, wantErr: true},
		{name: "read equals delivered", mutate: func(c *Config) { c.ReadAfter = time.Second }, wantErr: true},
		{name: "read before delivered", mutate: func(c *Config) { c.ReadAfter = 500 * time.Millisecond }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err := Load([]string{"-delivered-after", "2s", "-read-after", "1s"})
	assert.Error(t, err)
}
