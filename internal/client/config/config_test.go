package config

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, 10*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, 24*time.Hour, c.CatalogTTL)
	assert.Equal(t, avatar.DefaultAPIURL, c.AvatarAPIURL)
	assert.Equal(t, "info", c.LogLevel)
	assert.Contains(t, c.DatabasePath, "cache.db")
}

func TestLoadConfig_FlagsOverEnvironment(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://env.supabase.test")
	t.Setenv("SUPABASE_ANON_KEY", "env-key")
	t.Setenv("BUDDY_CATALOG_TTL", "2h")

	cfg, err := LoadConfig([]string{"-u", "https://flag.supabase.test", "-i", "5", "-x", "ignored"})
	require.NoError(t, err)

	assert.Equal(t, "https://flag.supabase.test", cfg.SupabaseURL)
	assert.Equal(t, "env-key", cfg.SupabaseAnonKey)
	assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, 2*time.Hour, cfg.CatalogTTL)
}

func TestLoadConfig_MissingProject(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")

	_, err := LoadConfig(nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.SupabaseURL = "https://x.supabase.test"
	require.ErrorIs(t, c.Validate(), common.ErrInvalidInput)

	c.SupabaseAnonKey = "anon"
	require.NoError(t, c.Validate())

	c.RequestTimeout = 0
	require.ErrorIs(t, c.Validate(), common.ErrInvalidInput)
}
