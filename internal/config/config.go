package config

import (
	"fmt"
	"os"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Migrations MigrationsConfig `mapstructure:"migrations"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Images     ImagesConfig     `mapstructure:"images"`
	CDN        CDNConfig        `mapstructure:"cdn"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr               string `mapstructure:"addr"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec"`
	ReadTimeoutSec     int    `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec    int    `mapstructure:"write_timeout_sec"`
	MaxUploadSizeMB    int    `mapstructure:"max_upload_size_mb"`
}

type DatabaseConfig struct {
	DSN                  string `mapstructure:"dsn"`
	Slaves               string `mapstructure:"slaves"`
	MaxOpenConns         int    `mapstructure:"max_open_conns"`
	MaxIdleConns         int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec   int    `mapstructure:"conn_max_lifetime_sec"`
	ConnectRetries       int    `mapstructure:"connect_retries"`
	ConnectRetryDelaySec int    `mapstructure:"connect_retry_delay_sec"`
}

type MigrationsConfig struct {
	Path string `mapstructure:"path"`
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	GroupID        string   `mapstructure:"group_id"`
	MaxConcurrency int      `mapstructure:"max_concurrency"`
}

type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKey       string `mapstructure:"access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	OriginalDir     string `mapstructure:"original_dir"`
	ThumbnailDir    string `mapstructure:"thumbnail_dir"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

type ImagesConfig struct {
	AllowedFormats  []string `mapstructure:"allowed_formats"`
	MaxSizeBytes    int64    `mapstructure:"max_size_bytes"`
	MinWidth        int      `mapstructure:"min_width"`
	MaxWidth        int      `mapstructure:"max_width"`
	MinHeight       int      `mapstructure:"min_height"`
	MaxHeight       int      `mapstructure:"max_height"`
	MinAspectRatio  float64  `mapstructure:"min_aspect_ratio"`
	MaxAspectRatio  float64  `mapstructure:"max_aspect_ratio"`
	ThumbnailWidths []int    `mapstructure:"thumbnail_widths"`
	FetchTimeoutSec int      `mapstructure:"fetch_timeout_sec"`
}

type CDNConfig struct {
	Host   string `mapstructure:"host"`
	Scheme string `mapstructure:"scheme"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func Load(path string) (*Config, error) {
	cfg := config.New()

	configPath := path
	if configPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			configPath = "config.yaml"
		} else if _, err := os.Stat("/app/config.yaml"); err == nil {
			configPath = "/app/config.yaml"
		} else {
			return nil, fmt.Errorf("config.yaml not found")
		}
	}

	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = ""
	}

	if err := cfg.Load(configPath, envPath, "APP"); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	appConfig := &Config{}
	if err := cfg.Unmarshal(appConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(appConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	zlog.Logger.Info().
		Str("bucket", appConfig.Storage.Bucket).
		Ints("thumbnail_widths", appConfig.Images.ThumbnailWidths).
		Strs("allowed_formats", appConfig.Images.AllowedFormats).
		Msg("Config loaded successfully via wbf")

	return appConfig, nil
}

func validateConfig(cfg *Config) error {
	// Server
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if cfg.Server.ShutdownTimeoutSec <= 0 {
		return fmt.Errorf("server.shutdown_timeout_sec must be positive")
	}
	if cfg.Server.ReadTimeoutSec <= 0 {
		return fmt.Errorf("server.read_timeout_sec must be positive")
	}
	if cfg.Server.WriteTimeoutSec <= 0 {
		return fmt.Errorf("server.write_timeout_sec must be positive")
	}
	if cfg.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("server.max_upload_size_mb must be positive")
	}

	// Database
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if cfg.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if cfg.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns must be non-negative")
	}

	// Migrations
	if cfg.Migrations.Path == "" {
		return fmt.Errorf("migrations.path is required")
	}

	// Kafka
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers must contain at least one broker")
	}
	if cfg.Kafka.GroupID == "" {
		return fmt.Errorf("kafka.group_id is required")
	}
	if cfg.Kafka.MaxConcurrency <= 0 {
		return fmt.Errorf("kafka.max_concurrency must be positive")
	}

	// Storage
	if cfg.Storage.Endpoint == "" {
		return fmt.Errorf("storage.endpoint is required")
	}
	if cfg.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if cfg.Storage.AccessKey == "" || cfg.Storage.SecretKey == "" {
		return fmt.Errorf("storage.access_key and storage.secret_key are required")
	}

	// Images
	if len(cfg.Images.AllowedFormats) == 0 {
		return fmt.Errorf("images.allowed_formats must contain at least one format")
	}
	if cfg.Images.MaxSizeBytes <= 0 {
		return fmt.Errorf("images.max_size_bytes must be positive")
	}
	if cfg.Images.MinWidth <= 0 || cfg.Images.MaxWidth < cfg.Images.MinWidth {
		return fmt.Errorf("images.min_width/max_width bounds are invalid")
	}
	if cfg.Images.MinHeight <= 0 || cfg.Images.MaxHeight < cfg.Images.MinHeight {
		return fmt.Errorf("images.min_height/max_height bounds are invalid")
	}
	if cfg.Images.MinAspectRatio <= 0 || cfg.Images.MaxAspectRatio < cfg.Images.MinAspectRatio {
		return fmt.Errorf("images.min_aspect_ratio/max_aspect_ratio bounds are invalid")
	}
	if len(cfg.Images.ThumbnailWidths) == 0 {
		return fmt.Errorf("images.thumbnail_widths must contain at least one width")
	}
	for _, w := range cfg.Images.ThumbnailWidths {
		if w <= 0 {
			return fmt.Errorf("images.thumbnail_widths must be positive, got %d", w)
		}
	}

	if cfg.Logging.Level == "" {
		return fmt.Errorf("logging.level is required")
	}

	return nil
}
