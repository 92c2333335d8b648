package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the admin service.
type Config struct {
	PostgresURL     string `mapstructure:"POSTGRES_URL"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	ServerPort      string `mapstructure:"SERVER_PORT"`
	FetchTimeout    int    `mapstructure:"FETCH_TIMEOUT"`
	PageCacheTTL    int    `mapstructure:"PAGE_CACHE_TTL"`
	RenderedFetches bool   `mapstructure:"RENDERED_FETCHES"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = viper.ReadInConfig()

	// Set default values
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("FETCH_TIMEOUT", 30)  // in seconds
	viper.SetDefault("PAGE_CACHE_TTL", 60) // in seconds
	viper.SetDefault("RENDERED_FETCHES", false)
	viper.SetDefault("LOG_LEVEL", "info")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
