// Package config loads the runtime configuration from an optional
// librelandlord.yaml and LIBRELANDLORD_* environment variables.
package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type Config struct {
	Database DatabaseConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string
	DSN    string
}

type LogConfig struct {
	Level       string
	Development bool
}

func Load() (*Config, error) {
	// A missing .env is fine; it only exists in local setups.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LIBRELANDLORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "librelandlord.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetConfigName("librelandlord")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return &Config{
		Database: DatabaseConfig{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
	}, nil
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
