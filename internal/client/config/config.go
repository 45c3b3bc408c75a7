package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/balancebuddy/internal/avatar"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/filex"
)

const appName = "balancebuddy"

// Config holds runtime settings for the Balance Buddy client.
//
// Fields:
//   - SupabaseURL, SupabaseAnonKey: the hosted project and its public key.
//   - DatabasePath: the local sqlite cache.
//   - OnlineCheckInterval: how often the client probes backend reachability.
//   - RequestTimeout: per-command deadline for remote calls.
//   - CatalogTTL: how long the cached option catalog stays fresh.
//   - AvatarAPIURL: DiceBear style endpoint avatar images come from.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	SupabaseURL         string        `env:"SUPABASE_URL"`
	SupabaseAnonKey     string        `env:"SUPABASE_ANON_KEY"`
	DatabasePath        string        `env:"BUDDY_DB_PATH"`
	OnlineCheckInterval time.Duration `env:"BUDDY_ONLINE_CHECK_INTERVAL"`
	RequestTimeout      time.Duration `env:"BUDDY_REQUEST_TIMEOUT"`
	CatalogTTL          time.Duration `env:"BUDDY_CATALOG_TTL"`
	AvatarAPIURL        string        `env:"BUDDY_AVATAR_API_URL"`
	LogLevel            string        `env:"BUDDY_LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = filex.UserDataPath(appName, "cache.db")
	c.OnlineCheckInterval = 10 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.CatalogTTL = 24 * time.Hour
	c.AvatarAPIURL = avatar.DefaultAPIURL
	c.LogLevel = "info"
}

// Validate reports missing settings the client cannot start without.
func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("%w: supabase url is not set (-u or SUPABASE_URL)", common.ErrInvalidInput)
	}
	if c.SupabaseAnonKey == "" {
		return fmt.Errorf("%w: supabase anon key is not set (-k or SUPABASE_ANON_KEY)", common.ErrInvalidInput)
	}
	if c.OnlineCheckInterval <= 0 || c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: intervals must be positive", common.ErrInvalidInput)
	}
	return nil
}

// LoadConfig constructs a Config from defaults, then the .env file and the
// environment, then the JSON file named by -c/-config, then flags. Later
// sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, dotEnvFile); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
