package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr            string
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	}
	Database struct {
		Driver         string
		Path           string
		DSN            string
		MaxOpenConns   int           `mapstructure:"max_open_conns"`
		ConnectRetries int           `mapstructure:"connect_retries"`
		MaxRetryDelay  time.Duration `mapstructure:"max_retry_delay"`
	}
	Log struct {
		Level  string
		Format string
	}
	HTTP struct {
		Mode string
	}
}

// Load reads configuration from environment variables and optional config files.
// Values from a .env file never override variables already set.
func Load() (Config, error) {
	_ = godotenv.Load() // optional file

	v := viper.New()
	v.SetEnvPrefix("USERTASK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/usertask.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.connect_retries", 5)
	v.SetDefault("database.max_retry_delay", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("http.mode", "release")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings Load cannot default.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Database.ConnectRetries < 0 {
		return fmt.Errorf("database.connect_retries must not be negative")
	}
	return nil
}
