package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	dotEnv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotEnv, []byte(
		"SUPABASE_URL=https://file.supabase.test\nBUDDY_REQUEST_TIMEOUT=42s\n"), 0o600))

	t.Setenv("SUPABASE_URL", "https://env.supabase.test")
	t.Cleanup(func() { _ = os.Unsetenv("BUDDY_REQUEST_TIMEOUT") })

	cfg := &Config{RequestTimeout: time.Second, LogLevel: "info"}
	require.NoError(t, parseEnv(cfg, dotEnv))

	assert.Equal(t, "https://env.supabase.test", cfg.SupabaseURL)
	assert.Equal(t, 42*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseEnv_MissingDotEnvIsFine(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, parseEnv(cfg, filepath.Join(t.TempDir(), ".env")))
}

func TestParseEnv_BadDuration(t *testing.T) {
	t.Setenv("BUDDY_CATALOG_TTL", "soon")

	require.Error(t, parseEnv(&Config{}, ""))
}
