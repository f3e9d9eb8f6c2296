// Package config handles loading and managing esgscope configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/greenstart/esgscope/pkg/scoring"
)

// Config is the top-level configuration for esgscope.
type Config struct {
	Scoring ScoringConfig `yaml:"scoring"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// ScoringConfig controls scoring behavior.
type ScoringConfig struct {
	OverallPolicy string `yaml:"overall_policy"` // weighted or reported_average
	Industry      string `yaml:"industry"`       // benchmark peer group
	RescoreCron   string `yaml:"rescore_cron"`   // empty disables scheduled rescoring
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	APIKey      string `yaml:"api_key"`
	CacheSize   int    `yaml:"cache_size"`
	Migrate     bool   `yaml:"migrate"`
}

// StorageConfig selects where archived score reports are written.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // local, s3 or gcs
	Path      string `yaml:"path"`    // local backend root
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			OverallPolicy: string(scoring.PolicyWeighted),
			Industry:      string(scoring.IndustryGeneral),
			RescoreCron:   "0 0 3 * * *",
		},
		Server: ServerConfig{
			Port:        "8080",
			DatabaseURL: "postgres://localhost:5432/esgscope?sslmode=disable",
			CacheSize:   100,
			Migrate:     true,
		},
		Storage: StorageConfig{
			Backend: "local",
			Path:    "/tmp/esgscope-data",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := scoring.ParsePolicy(c.Scoring.OverallPolicy); err != nil {
		return fmt.Errorf("scoring.overall_policy: %w", err)
	}
	switch c.Storage.Backend {
	case "", "local", "s3", "gcs":
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if (c.Storage.Backend == "s3" || c.Storage.Backend == "gcs") && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required for the %s backend", c.Storage.Backend)
	}
	return nil
}

// Policy returns the parsed overall aggregation policy.
func (c *Config) Policy() scoring.OverallPolicy {
	p, err := scoring.ParsePolicy(c.Scoring.OverallPolicy)
	if err != nil {
		return scoring.PolicyWeighted
	}
	return p
}

// ApplyEnv overrides fields from environment variables. Unset variables
// leave the loaded values alone.
func (c *Config) ApplyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.DatabaseURL, "DATABASE_URL")
	setString(&c.Server.APIKey, "ESGSCOPE_API_KEY")
	setString(&c.Scoring.OverallPolicy, "ESGSCOPE_OVERALL_POLICY")
	setString(&c.Scoring.RescoreCron, "ESGSCOPE_RESCORE_CRON")
	setString(&c.Storage.Backend, "STORAGE_BACKEND")
	setString(&c.Storage.Path, "LOCAL_STORAGE_PATH")
	setString(&c.Storage.Bucket, "STORAGE_BUCKET")
	setString(&c.Storage.Region, "AWS_REGION")
	setString(&c.Storage.Endpoint, "S3_ENDPOINT")
	setString(&c.Storage.AccessKey, "S3_ACCESS_KEY")
	setString(&c.Storage.SecretKey, "S3_SECRET_KEY")
	setString(&c.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("SCORE_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Server.CacheSize = n
		}
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		c.Log.Pretty, _ = strconv.ParseBool(v)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// FindConfigFile looks for .esgscope/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".esgscope", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// LoadFrom finds and loads the config file visible from dir. An explicit
// path takes precedence over the directory walk.
func LoadFrom(dir, explicit string) (*Config, error) {
	path := explicit
	if path == "" {
		path = FindConfigFile(dir)
	}
	if path == "" {
		return DefaultConfig(), nil
	}
	return Load(path)
}
