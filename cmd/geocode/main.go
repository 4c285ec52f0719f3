package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	mongoadapter "github.com/sismika/psgc-geo-etl/internal/adapter/mongo"
	"github.com/sismika/psgc-geo-etl/internal/adapter/nominatim"
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
		logger.Error("geocode failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()

	client, err := mongoadapter.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	store := mongoadapter.NewLocationStore(client.Database(cfg.MongoDatabase).Collection(cfg.MongoLocationsCollection))
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	api := nominatim.NewClient(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.NominatimTimeout, cfg.NominatimInterval, metrics, logger)
	geocoder, err := nominatim.NewCachedGeocoder(api, cfg.NominatimCacheSize, metrics)
	if err != nil {
		return err
	}
	logger.Info("geocoding locations",
		"nominatim_url", cfg.NominatimURL,
		"interval", cfg.NominatimInterval,
		"cache_size", cfg.NominatimCacheSize,
	)

	_, err = ingest.NewGeocodeJob(store, geocoder, logger, metrics).Run(ctx)
	return err
}
