package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	mongoadapter "github.com/sismika/psgc-geo-etl/internal/adapter/mongo"
	"github.com/sismika/psgc-geo-etl/internal/config"
	"github.com/sismika/psgc-geo-etl/internal/ingest"
	"github.com/sismika/psgc-geo-etl/internal/observability"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("titling failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := mongoadapter.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.MongoDatabase)
	locations := mongoadapter.NewLocationStore(db.Collection(cfg.MongoLocationsCollection))
	if err := locations.EnsureIndexes(ctx); err != nil {
		return err
	}
	quakes := mongoadapter.NewEarthquakeStore(db.Collection(cfg.MongoEarthquakesCollection), clockwork.NewRealClock())

	_, err = ingest.NewTitler(quakes, locations, logger, observability.NewMetrics()).Run(ctx)
	return err
}
