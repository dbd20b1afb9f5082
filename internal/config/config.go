package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

		HTTP   HTTPConfig   `envPrefix:"HTTP_"`
		SQLite SQLiteConfig `envPrefix:"SQLITE_"`
		Blob   BlobConfig   `envPrefix:"BLOB_"`
	}

	HTTPConfig struct {
		Port            string        `env:"PORT" envDefault:"8080"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	SQLiteConfig struct {
		Path string `env:"DB_PATH" envDefault:"./classifieds.db"`
	}

	// BlobConfig selects where image content lives. Backend "fs" keeps
	// blobs on disk and serves them from this process; "minio" points at
	// an S3-compatible store.
	BlobConfig struct {
		Backend   string `env:"BACKEND" envDefault:"fs"`
		Dir       string `env:"DIR" envDefault:"./images"`
		Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET" envDefault:"listings"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
		PublicURL string `env:"PUBLIC_URL"`
	}
)

// Load reads configuration from the environment, with an optional .env
// file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
