package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/balancebuddy/internal/logging"
	"github.com/dmitrijs2005/balancebuddy/internal/seed"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {

	cfg, err := seed.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.NewConsole(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *seed.Config, logger logging.Logger) error {
	f, err := os.Open(cfg.OptionsFile)
	if err != nil {
		return err
	}
	defer f.Close()

	options, err := seed.ParseOptionsDump(f)
	if err != nil {
		return err
	}
	logger.Info(ctx, "options parsed", "file", cfg.OptionsFile, "count", len(options))

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := seed.Seed(ctx, db, seed.WithPrice(options, cfg.Price))
	if err != nil {
		return err
	}
	logger.Info(ctx, "options seeded", "inserted", n, "skipped", len(options)-n)
	return nil
}
