package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/hupe1980/sparsevec"
	"github.com/hupe1980/sparsevec/blobstore"
	"github.com/hupe1980/sparsevec/blobstore/minio"
	"github.com/hupe1980/sparsevec/blobstore/s3"
	"github.com/hupe1980/sparsevec/resource"
	"github.com/hupe1980/sparsevec/snapshot"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix prefixes every environment variable, e.g. SVTOOL_STORE.
const envPrefix = "SVTOOL"

// Config validation errors
var (
	ErrInvalidStore     = errors.New("store must be local, minio or s3")
	ErrInvalidDataDir   = errors.New("data_dir cannot be empty for the local store")
	ErrInvalidBucket    = errors.New("bucket cannot be empty for remote stores")
	ErrInvalidEndpoint  = errors.New("minio_endpoint cannot be empty for the minio store")
	ErrInvalidLogFormat = errors.New("log_format must be 'json' or 'text'")
	ErrInvalidLogLevel  = errors.New("log_level must be debug, info, warn, or error")
	ErrInvalidLimit     = errors.New("limits cannot be negative")
)

// Config is the svtool configuration, read from SVTOOL_* variables.
type Config struct {
	Store   string `envconfig:"STORE" default:"local"`
	DataDir string `envconfig:"DATA_DIR" default:"./data"`
	Bucket  string `envconfig:"BUCKET"`
	Prefix  string `envconfig:"PREFIX"`
	Region  string `envconfig:"REGION"`

	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY"`
	MinioSecure    bool   `envconfig:"MINIO_SECURE" default:"true"`

	// DDBTable enables DynamoDB-backed CURRENT pointers for the s3 store.
	DDBTable string `envconfig:"DDB_TABLE"`

	Compression string `envconfig:"COMPRESSION" default:"zstd"`
	Concurrency int    `envconfig:"CONCURRENCY" default:"0"`
	MemoryLimit int64  `envconfig:"MEMORY_LIMIT" default:"0"` // bytes, 0 means unlimited
	IOLimit     int64  `envconfig:"IO_LIMIT" default:"0"`     // bytes per second, 0 means unlimited

	MetricsAddr string `envconfig:"METRICS_ADDR"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"`
}

// LoadConfig reads envFile (if it exists) into the environment and then
// processes the SVTOOL_* variables. Variables already set take precedence
// over the file.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateConfig validates the configuration and returns an error if invalid
func ValidateConfig(cfg *Config) error {
	switch cfg.Store {
	case "local":
		if cfg.DataDir == "" {
			return ErrInvalidDataDir
		}
	case "minio":
		if cfg.MinioEndpoint == "" {
			return ErrInvalidEndpoint
		}
		if cfg.Bucket == "" {
			return ErrInvalidBucket
		}
	case "s3":
		if cfg.Bucket == "" {
			return ErrInvalidBucket
		}
	default:
		return ErrInvalidStore
	}
	if _, err := snapshot.ParseCompression(cfg.Compression); err != nil {
		return err
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return ErrInvalidLogFormat
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.MemoryLimit < 0 || cfg.IOLimit < 0 || cfg.Concurrency < 0 {
		return ErrInvalidLimit
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, ErrInvalidLogLevel
	}
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg *Config) *sparsevec.Logger {
	level, _ := parseLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		return sparsevec.NewJSONLogger(level)
	}
	return sparsevec.NewTextLogger(level)
}

// NewController builds the resource controller described by cfg.
func NewController(cfg *Config) *resource.Controller {
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   cfg.MemoryLimit,
		MaxEncodeWorkers:   int64(max(cfg.Concurrency, 1)),
		IOLimitBytesPerSec: cfg.IOLimit,
	})
}

// OpenStore connects to the blob store selected by cfg.
func OpenStore(ctx context.Context, cfg *Config) (blobstore.BlobStore, error) {
	switch cfg.Store {
	case "local":
		return blobstore.NewLocalStore(cfg.DataDir), nil
	case "minio":
		store, err := minio.Dial(ctx, minio.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Region:    cfg.Region,
			Secure:    cfg.MinioSecure,
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		var opts []s3.Option
		if cfg.Prefix != "" {
			opts = append(opts, s3.WithPrefix(cfg.Prefix))
		}
		if cfg.Region != "" {
			opts = append(opts, s3.WithRegion(cfg.Region))
		}
		store, err := s3.New(ctx, cfg.Bucket, opts...)
		if err != nil {
			return nil, err
		}
		if cfg.DDBTable == "" {
			return store, nil
		}

		var loadOpts []func(*config.LoadOptions) error
		if cfg.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		baseURI := "s3://" + cfg.Bucket + "/" + strings.Trim(cfg.Prefix, "/")
		return s3.NewDDBCommitStore(store, dynamodb.NewFromConfig(awsCfg), cfg.DDBTable, baseURI), nil
	default:
		return nil, ErrInvalidStore
	}
}
