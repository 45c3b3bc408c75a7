// Package config loads runtime configuration for the Balance Buddy client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, then the process environment
//     (SUPABASE_URL, SUPABASE_ANON_KEY, BUDDY_*).
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-u string   supabase project url
//	-k string   supabase anon key
//	-d string   local cache database path
//	-i int      online status check interval (seconds)
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "supabase_url": "https://xyz.supabase.co",
//	  "supabase_anon_key": "eyJ...",
//	  "database_path": "/home/ann/.config/balancebuddy/cache.db",
//	  "online_check_interval": "10s",
//	  "request_timeout": "15s",
//	  "catalog_ttl": "24h",
//	  "avatar_api_url": "https://api.dicebear.com/9.x/avataaars",
//	  "log_level": "info"
//	}
package config
