package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"localmarket/internal/config"
	"localmarket/internal/db"
	"localmarket/internal/logging"
	"localmarket/internal/migrate"
)

func main() {
	steps := flag.Int("steps", 0, "number of migrations to roll back with `down` (0 = all)")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	logger := logging.New(logging.Options{ServiceName: "migrate", Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	switch cmd {
	case "up":
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
		logger.Info().Msg("migrations applied")
	case "down":
		if err := migrate.Rollback(ctx, pool, *steps); err != nil {
			logger.Fatal().Err(err).Msg("rollback migrations")
		}
		logger.Info().Int("steps", *steps).Msg("migrations rolled back")
	case "version":
		version, dirty, err := migrate.Version(ctx, pool)
		if err != nil {
			logger.Fatal().Err(err).Msg("read version")
		}
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
	default:
		logger.Error().Str("command", cmd).Msg("usage: migrate [-steps n] up|down|version")
		os.Exit(2)
	}
}
