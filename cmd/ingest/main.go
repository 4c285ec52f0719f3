package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	mongoadapter "github.com/sismika/psgc-geo-etl/internal/adapter/mongo"
	"github.com/sismika/psgc-geo-etl/internal/adapter/psgccsv"
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

	csvPath := flag.String("csv", cfg.PSGCCSVPath, "path to the PSGC publication datafile as CSV")
	flag.Parse()

	logger := observability.NewLogger(cfg)
	if err := run(cfg, *csvPath, logger); err != nil {
		logger.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, csvPath string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open datafile: %w", err)
	}
	defer f.Close()

	client, err := mongoadapter.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	store := mongoadapter.NewLocationStore(client.Database(cfg.MongoDatabase).Collection(cfg.MongoLocationsCollection))
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	logger.Info("ingesting psgc datafile", "path", csvPath)
	report, err := ingest.NewIngester(store, logger, observability.NewMetrics()).Run(ctx, psgccsv.NewReader(f))
	if err != nil {
		return err
	}
	if len(report.Unresolved) > 0 {
		logger.Warn("some locations were not ingested", "unresolved", report.Unresolved)
	}
	return nil
}
