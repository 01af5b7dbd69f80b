// Package config loads runtime configuration from an optional YAML file with
// environment-variable overrides.
package config

import (
	"errors"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Parser   ParserConfig   `yaml:"parser"`
	Web      WebConfig      `yaml:"web"`
	LogLevel string         `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

// DatabaseConfig mirrors the standard PG* environment variables.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"PGPORT" env-default:"5432"`
	User     string `yaml:"user" env:"PGUSER" env-default:"postgres"`
	Password string `yaml:"password" env:"PGPASSWORD" env-default:"postgres"`
	Name     string `yaml:"name" env:"PGDATABASE" env-default:"school_directory"`
	SSLMode  string `yaml:"sslmode" env:"PGSSLMODE" env-default:"disable"`
}

// ParserConfig locates the external address parser. With no executable
// configured, the in-process libpostal normalizer is used instead.
type ParserConfig struct {
	Executable string `yaml:"executable" env:"ADDRESS_PARSER_EXECUTABLE"`
	DataDir    string `yaml:"data_dir" env:"ADDRESS_PARSER_DATA_DIR" env-default:"/tmp/school-directory"`
}

type WebConfig struct {
	Addr string `yaml:"addr" env:"WEB_ADDR" env-default:":8080"`
}

// Load reads the config file at path (skipped when absent) and applies
// environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		err := cleanenv.ReadConfig(path, &cfg)
		if err == nil {
			return &cfg, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
