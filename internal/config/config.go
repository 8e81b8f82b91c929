package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable, e.g. SALESDASH_DATA_SOURCE.
const EnvPrefix = "SALESDASH"

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*"`
	RateLimit       float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT" default:"20"`
}

// DataConfig points at the sales workbook and controls how long it is cached
type DataConfig struct {
	Source   string        `yaml:"source" envconfig:"SOURCE" default:"Vendas Simulação.xlsx"`
	Sheet    string        `yaml:"sheet" envconfig:"SHEET" default:"Vendas"`
	CacheTTL time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" default:"1h"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"auto"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/salesdash.log"`
}

// Load applies defaults, then the optional YAML file named by
// SALESDASH_CONFIG, then environment variables, each overriding the last.
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		fileConfig, keys, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		mergeFile(&cfg, *fileConfig, keys)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// fileKeys records which section/key pairs a YAML file actually sets, so an
// explicit zero such as `cache_ttl: 0` is told apart from an absent key.
type fileKeys map[string]map[string]any

func (k fileKeys) has(section, key string) bool {
	_, ok := k[section][key]
	return ok
}

// loadFromFile loads configuration from YAML file
func loadFromFile(path string) (*Config, fileKeys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, err
	}
	keys := fileKeys{}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, nil, err
	}
	return &cfg, keys, nil
}

// mergeFile copies every value the file sets over the defaults, leaving
// fields whose environment variable is set untouched.
func mergeFile(cfg *Config, file Config, keys fileKeys) {
	fromFile(&cfg.Server.Port, file.Server.Port, keys.has("server", "port"), "SERVER_PORT")
	fromFile(&cfg.Server.ReadTimeout, file.Server.ReadTimeout, keys.has("server", "read_timeout"), "SERVER_READ_TIMEOUT")
	fromFile(&cfg.Server.WriteTimeout, file.Server.WriteTimeout, keys.has("server", "write_timeout"), "SERVER_WRITE_TIMEOUT")
	fromFile(&cfg.Server.ShutdownTimeout, file.Server.ShutdownTimeout, keys.has("server", "shutdown_timeout"), "SERVER_SHUTDOWN_TIMEOUT")
	fromFile(&cfg.Server.AllowedOrigins, file.Server.AllowedOrigins, keys.has("server", "allowed_origins"), "SERVER_ALLOWED_ORIGINS")
	fromFile(&cfg.Server.RateLimit, file.Server.RateLimit, keys.has("server", "rate_limit"), "SERVER_RATE_LIMIT")

	fromFile(&cfg.Data.Source, file.Data.Source, keys.has("data", "source"), "DATA_SOURCE")
	fromFile(&cfg.Data.Sheet, file.Data.Sheet, keys.has("data", "sheet"), "DATA_SHEET")
	fromFile(&cfg.Data.CacheTTL, file.Data.CacheTTL, keys.has("data", "cache_ttl"), "DATA_CACHE_TTL")

	fromFile(&cfg.Logging.Level, file.Logging.Level, keys.has("logging", "level"), "LOGGING_LEVEL")
	fromFile(&cfg.Logging.Format, file.Logging.Format, keys.has("logging", "format"), "LOGGING_FORMAT")
	fromFile(&cfg.Logging.Output, file.Logging.Output, keys.has("logging", "output"), "LOGGING_OUTPUT")
	fromFile(&cfg.Logging.FilePath, file.Logging.FilePath, keys.has("logging", "file_path"), "LOGGING_FILE_PATH")
}

func fromFile[T any](dst *T, v T, inFile bool, key string) {
	if !inFile || envSet(key) {
		return
	}
	*dst = v
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + key)
	return ok
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Data.Source) == "" {
		return fmt.Errorf("data source path is empty")
	}
	if c.Data.CacheTTL < 0 {
		return fmt.Errorf("negative cache ttl %s", c.Data.CacheTTL)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
