package config

import (
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"socialgap/internal/errors"
)

// Data source kinds
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceDemo     = "demo"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Log      LogConfig      `yaml:"log"`
}

// DataConfig selects where the flat person table is loaded from
type DataConfig struct {
	Source string `yaml:"source" env:"DATA_SOURCE" env-default:"file"`
	File   string `yaml:"file" env:"DATA_FILE"`
	Sheet  string `yaml:"sheet" env:"DATA_SHEET" env-default:"Sheet1"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL   string `yaml:"url" env:"DATABASE_URL"`
	Table string `yaml:"table" env:"DATABASE_TABLE" env-default:"personas_completo"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string   `yaml:"port" env:"PORT" env-default:"8080"`
	GinMode     string   `yaml:"gin_mode" env:"GIN_MODE" env-default:"release"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:"," env-default:"*"`
}

// AnalysisConfig tunes the analytical core
type AnalysisConfig struct {
	MultiProgramWorkers int           `yaml:"multi_program_workers" env:"MULTI_PROGRAM_WORKERS" env-default:"4"`
	RankingCacheTTL     time.Duration `yaml:"ranking_cache_ttl" env:"RANKING_CACHE_TTL" env-default:"30m"`
	DefaultTopN         int           `yaml:"default_top_n" env:"DEFAULT_TOP_N" env-default:"10"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"INFO"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
}

// Load reads configuration from the YAML file named by CONFIG_FILE, if set,
// then from environment variables, and validates it.
func Load() (*Config, error) {
	config := &Config{}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cleanenv.ReadConfig(path, config); err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to read config file %s", path)
		}
	} else if err := cleanenv.ReadEnv(config); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to read environment")
	}

	config.Data.Source = strings.ToLower(strings.TrimSpace(config.Data.Source))

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	switch config.Data.Source {
	case SourceFile:
		if config.Data.File == "" {
			return errors.ConfigInvalid("DATA_FILE is required when DATA_SOURCE=file")
		}
	case SourcePostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
		if config.Database.Table == "" {
			return errors.ConfigInvalid("DATABASE_TABLE is required when DATA_SOURCE=postgres")
		}
	case SourceDemo:
	default:
		return errors.ConfigInvalid("DATA_SOURCE must be 'file', 'postgres' or 'demo'")
	}
	if config.Analysis.MultiProgramWorkers < 1 {
		return errors.ConfigInvalid("MULTI_PROGRAM_WORKERS must be at least 1")
	}
	if config.Analysis.DefaultTopN < 1 {
		return errors.ConfigInvalid("DEFAULT_TOP_N must be at least 1")
	}
	return nil
}
