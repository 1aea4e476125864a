// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gewnthar/datasetdoc/logging"
)

type InputsConfig struct {
	SitemapList  string `yaml:"sitemap_list"`  // lines of "sitemap_url,homepage_url"
	DownloadList string `yaml:"download_list"` // one downloaded filename per line
}

type OutputConfig struct {
	Report string `yaml:"report"`
}

type CatalogConfig struct {
	BaseURL    string        `yaml:"base_url"`
	AppToken   string        `yaml:"app_token"`
	TimeoutStr string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"` // Parsed duration
}

type ArchiveConfig struct {
	TimemapURL string        `yaml:"timemap_url"`
	TimeoutStr string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

type ThrottleConfig struct {
	DelayStr string        `yaml:"delay"`
	Delay    time.Duration `yaml:"-"` // pause after each homepage entry
}

type CrawlerConfig struct {
	Sitemaps   []string      `yaml:"sitemaps"`
	MaxDepth   int           `yaml:"max_depth"`
	OutputPath string        `yaml:"output"`
	TimeoutStr string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type StorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the metrics listener during document runs
}

type Config struct {
	Inputs   InputsConfig   `yaml:"inputs"`
	Output   OutputConfig   `yaml:"output"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Throttle ThrottleConfig `yaml:"throttle"`
	Crawler  CrawlerConfig  `yaml:"crawler"`
	Logging  logging.Config `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Inputs: InputsConfig{
			SitemapList:  "cdc_data_sitemap_data.csv",
			DownloadList: "cdc_data_downloads.csv",
		},
		Output:   OutputConfig{Report: "dataset_documentation.csv"},
		Catalog:  CatalogConfig{BaseURL: "https://api.us.socrata.com/api/catalog/v1", TimeoutStr: "30s"},
		Archive:  ArchiveConfig{TimemapURL: "http://web.archive.org/web/timemap/link/", TimeoutStr: "60s"},
		Throttle: ThrottleConfig{DelayStr: "10s"},
		Crawler: CrawlerConfig{
			Sitemaps:   []string{"https://data.cdc.gov/sitemap.xml"},
			MaxDepth:   3,
			OutputPath: "cdc_data_sitemap_data.csv",
			TimeoutStr: "30s",
		},
		Logging:  logging.DefaultConfig(),
		Database: DatabaseConfig{Host: "127.0.0.1", Port: "3306", DBName: "datasetdoc"},
		Storage:  StorageConfig{Bucket: "dataset-documentation", Prefix: "reports"},
		Server:   ServerConfig{Port: "8080"},
	}
}

// LoadConfig reads the yaml file at configPath on top of the defaults, then
// applies environment overrides (a .env file in the working directory is
// loaded first if present). A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	applyEnv(cfg)

	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}

	if cfg.Output.Report != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Output.Report), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for report: %w", err)
		}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Catalog.AppToken, "SOCRATA_APP_TOKEN")
	setFromEnv(&cfg.Database.Password, "DB_PASSWORD")
	setFromEnv(&cfg.Storage.AccessKey, "MINIO_ACCESS_KEY")
	setFromEnv(&cfg.Storage.SecretKey, "MINIO_SECRET_KEY")
	setFromEnv(&cfg.Throttle.DelayStr, "DATASETDOC_DELAY")
	setFromEnv(&cfg.Logging.Level, "LOG_LEVEL")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (cfg *Config) parseDurations() error {
	var err error
	if cfg.Catalog.Timeout, err = parseDuration(cfg.Catalog.TimeoutStr, 30*time.Second); err != nil {
		return fmt.Errorf("failed to parse catalog timeout: %w", err)
	}
	if cfg.Archive.Timeout, err = parseDuration(cfg.Archive.TimeoutStr, 60*time.Second); err != nil {
		return fmt.Errorf("failed to parse archive timeout: %w", err)
	}
	if cfg.Crawler.Timeout, err = parseDuration(cfg.Crawler.TimeoutStr, 30*time.Second); err != nil {
		return fmt.Errorf("failed to parse crawler timeout: %w", err)
	}
	if cfg.Throttle.Delay, err = parseDuration(cfg.Throttle.DelayStr, 10*time.Second); err != nil {
		return fmt.Errorf("failed to parse throttle delay: %w", err)
	}
	if cfg.Throttle.Delay < 0 {
		return fmt.Errorf("throttle delay must not be negative, got %s", cfg.Throttle.Delay)
	}
	return nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
