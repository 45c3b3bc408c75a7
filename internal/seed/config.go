package seed

import (
	"flag"
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/flagx"
)

const DefaultPrice = 10

type Config struct {
	DSN         string `env:"SEED_DATABASE_DSN"`
	OptionsFile string `env:"SEED_OPTIONS_FILE"`
	Price       int    `env:"SEED_PRICE"`
	LogLevel    string `env:"SEED_LOG_LEVEL"`
}

// LoadConfig applies defaults, then the environment, then flags:
//
//	-d string   postgres dsn of the hosted project
//	-f string   DiceBear options dump (json)
//	-p int      price of every option
//	-l string   log level
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{
		OptionsFile: "dicebear_avataaars_options.json",
		Price:       DefaultPrice,
		LogLevel:    "info",
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.DSN, "d", cfg.DSN, "postgres dsn")
	fs.StringVar(&cfg.OptionsFile, "f", cfg.OptionsFile, "options dump file")
	fs.IntVar(&cfg.Price, "p", cfg.Price, "price of every option")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug|info|warn|error")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-d", "-f", "-p", "-l"})); err != nil {
		return nil, err
	}

	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: database dsn is required (-d or SEED_DATABASE_DSN)", common.ErrInvalidInput)
	}
	if cfg.OptionsFile == "" {
		return nil, fmt.Errorf("%w: options file is required", common.ErrInvalidInput)
	}
	if cfg.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", common.ErrInvalidInput)
	}
	return cfg, nil
}
