package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/balancebuddy/internal/flagx"
	"github.com/dmitrijs2005/balancebuddy/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration so they can be written as "3s" or as integer nanoseconds.
type JSONConfig struct {
	SupabaseURL         string         `json:"supabase_url"`
	SupabaseAnonKey     string         `json:"supabase_anon_key"`
	DatabasePath        string         `json:"database_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	CatalogTTL          timex.Duration `json:"catalog_ttl"`
	AvatarAPIURL        string         `json:"avatar_api_url"`
	LogLevel            string         `json:"log_level"`
}

// parseJSON overlays cfg with the fields set in the file given by -c or
// -config. Without either flag it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.SupabaseURL, jc.SupabaseURL)
	setString(&cfg.SupabaseAnonKey, jc.SupabaseAnonKey)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.AvatarAPIURL, jc.AvatarAPIURL)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.CatalogTTL.Duration > 0 {
		cfg.CatalogTTL = jc.CatalogTTL.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
