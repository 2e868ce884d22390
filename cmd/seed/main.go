package main

import (
	"context"

	"github.com/joho/godotenv"

	"localmarket/internal/config"
	"localmarket/internal/db"
	"localmarket/internal/logging"
	"localmarket/internal/repository/product"
	"localmarket/internal/repository/shop"
	"localmarket/internal/seed"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	logger := logging.New(logging.Options{ServiceName: "seed", Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	count, err := seed.Apply(ctx, shop.NewPostgres(pool, logger), product.NewPostgres(pool, logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("seed apply")
	}

	logger.Info().Int("products", count).Msg("seed applied")
}
