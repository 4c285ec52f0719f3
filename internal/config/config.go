package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// MongoDB location and earthquake storage.
	MongoURI                   string
	MongoDatabase              string
	MongoLocationsCollection   string
	MongoEarthquakesCollection string

	// Nominatim geocoding configuration.
	NominatimURL       string
	NominatimUserAgent string
	NominatimTimeout   time.Duration
	NominatimInterval  time.Duration
	NominatimCacheSize int

	PSGCCSVPath string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	nominatimTimeout, err := parsePositiveDuration("NOMINATIM_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	// Nominatim's usage policy allows at most one request per second.
	nominatimInterval, err := parsePositiveDuration("NOMINATIM_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-earthquakes"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "titled-earthquakes"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "psgc-geo-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		MongoURI:                   sharedcfg.EnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:              sharedcfg.EnvOrDefault("MONGODB_DATABASE", "psgc"),
		MongoLocationsCollection:   sharedcfg.EnvOrDefault("MONGODB_LOCATIONS_COLLECTION", "locations"),
		MongoEarthquakesCollection: sharedcfg.EnvOrDefault("MONGODB_EARTHQUAKES_COLLECTION", "earthquake"),

		NominatimURL:       sharedcfg.EnvOrDefault("NOMINATIM_URL", defaultNominatimURL),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "psgc-geo-etl/1.0"),
		NominatimTimeout:   nominatimTimeout,
		NominatimInterval:  nominatimInterval,
		NominatimCacheSize: parseNominatimCacheSize(),

		PSGCCSVPath: sharedcfg.EnvOrDefault("PSGC_CSV_PATH", "PSGC-4Q-2023-Publication-Datafile.csv"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.MongoURI == "" {
		return nil, errors.New("MONGODB_URI is required")
	}
	if cfg.NominatimUserAgent == "" {
		return nil, errors.New("NOMINATIM_USER_AGENT is required by the Nominatim usage policy")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseNominatimCacheSize() int {
	if s := os.Getenv("NOMINATIM_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
