// Package config собирает настройки сервиса из флагов, YAML-файла и переменных окружения.
//
// Приоритет: значения по умолчанию < YAML-файл (-c / CONFIG) < явные флаги < окружение.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"

	"github.com/aseptimu/bijective-shortener/internal/app/token"
)

// DBTimeout ограничивает время одного обращения к базе.
const DBTimeout = 5 * time.Second

type ConfigType struct {
	ServerAddress   string `env:"SERVER_ADDRESS" yaml:"server_address"`
	BaseAddress     string `env:"BASE_URL" yaml:"base_url"`
	FileStoragePath string `env:"FILE_STORAGE_PATH" yaml:"file_storage_path"`
	DSN             string `env:"DATABASE_DSN" yaml:"database_dsn"`
	SQLitePath      string `env:"SQLITE_PATH" yaml:"sqlite_path"`
	RedisAddress    string `env:"REDIS_ADDRESS" yaml:"redis_address"`

	CacheTTL       time.Duration `env:"CACHE_TTL" yaml:"cache_ttl"`
	RedisTTL       time.Duration `env:"REDIS_CACHE_TTL" yaml:"redis_cache_ttl"`
	TokenBytes     int           `env:"TOKEN_BYTES" yaml:"token_bytes"`
	MaxAttempts    int           `env:"SHORTEN_MAX_ATTEMPTS" yaml:"max_attempts"`
	RetryBaseDelay time.Duration `env:"RETRY_BASE_DELAY" yaml:"retry_base_delay"`
	RetryMaxDelay  time.Duration `env:"RETRY_MAX_DELAY" yaml:"retry_max_delay"`
	BatchWorkers   int           `env:"BATCH_WORKERS" yaml:"batch_workers"`

	LogLevel   string `env:"LOG_LEVEL" yaml:"log_level"`
	ConfigFile string `env:"CONFIG" yaml:"-"`
}

// NewConfig разбирает флаги командной строки процесса и окружение.
func NewConfig() (*ConfigType, error) {
	return Parse(flag.CommandLine, os.Args[1:])
}

// Parse регистрирует флаги в fs, разбирает args и накладывает YAML и окружение.
func Parse(fs *flag.FlagSet, args []string) (*ConfigType, error) {
	config := ConfigType{}

	fs.StringVar(&config.ServerAddress, "a", "localhost:8080", "HTTP server address")
	fs.StringVar(&config.BaseAddress, "b", "http://localhost:8080", "shorten URL base address")
	fs.StringVar(&config.FileStoragePath, "f", "", "File storage path")
	fs.StringVar(&config.DSN, "d", "", "PostgreSQL DSN")
	fs.StringVar(&config.SQLitePath, "s", "", "SQLite database path")
	fs.StringVar(&config.RedisAddress, "r", "", "Redis address for the resolve cache")
	fs.DurationVar(&config.CacheTTL, "cache-ttl", 10*time.Minute, "resolve cache TTL, 0 disables the local cache")
	fs.DurationVar(&config.RedisTTL, "redis-ttl", time.Hour, "Redis resolve cache TTL, used only with PostgreSQL storage")
	fs.IntVar(&config.TokenBytes, "token-bytes", token.DefaultBytes, "random bytes per token")
	fs.IntVar(&config.MaxAttempts, "max-attempts", 16, "shorten attempts before giving up")
	fs.DurationVar(&config.RetryBaseDelay, "retry-base", time.Millisecond, "base backoff between attempts")
	fs.DurationVar(&config.RetryMaxDelay, "retry-max", 50*time.Millisecond, "max backoff between attempts")
	fs.IntVar(&config.BatchWorkers, "w", 5, "batch shortening workers")
	fs.StringVar(&config.LogLevel, "l", "info", "log level: debug, info, warn, error")
	fs.StringVar(&config.ConfigFile, "c", "", "YAML config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	configFile := config.ConfigFile
	if v, ok := os.LookupEnv("CONFIG"); ok {
		configFile = v
	}
	if configFile != "" {
		if err := loadFile(configFile, &config); err != nil {
			return nil, err
		}
		// Повторный разбор возвращает явно заданным флагам приоритет над файлом.
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации из env: %w", err)
	}

	config.BaseAddress = strings.TrimRight(config.BaseAddress, "/")
	return &config, config.validate()
}

func loadFile(path string, config *ConfigType) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *ConfigType) validate() error {
	switch {
	case c.TokenBytes <= 0:
		return fmt.Errorf("token bytes must be positive, got %d", c.TokenBytes)
	case c.TokenBytes > token.MaxBytes:
		return fmt.Errorf("token bytes must not exceed %d, got %d", token.MaxBytes, c.TokenBytes)
	case c.MaxAttempts <= 0:
		return fmt.Errorf("max attempts must be positive, got %d", c.MaxAttempts)
	case c.BatchWorkers <= 0:
		return fmt.Errorf("batch workers must be positive, got %d", c.BatchWorkers)
	case c.RetryMaxDelay < c.RetryBaseDelay:
		return fmt.Errorf("retry max delay %s is less than base delay %s", c.RetryMaxDelay, c.RetryBaseDelay)
	case c.RedisAddress != "" && c.RedisTTL <= 0:
		return fmt.Errorf("redis cache TTL must be positive, got %s", c.RedisTTL)
	}
	return nil
}
