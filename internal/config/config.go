/**
 * @description
 * This file handles the configuration management for the engagement-service.
 * It uses the 'viper' library to load configuration from environment
 * variables, providing a centralized and consistent way to manage settings.
 */
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort          string `mapstructure:"SERVER_PORT"`
	DatabaseURL         string `mapstructure:"DATABASE_URL"`
	RedisURL            string `mapstructure:"REDIS_URL"`
	RabbitMQURL         string `mapstructure:"RABBITMQ_URL"`
	JWTSecret           string `mapstructure:"JWT_SECRET"`
	Timezone            string `mapstructure:"TIMEZONE"`
	DashboardCacheTTLMS int    `mapstructure:"DASHBOARD_CACHE_TTL_MS"`
}

// DashboardCacheTTL returns the snapshot cache TTL as a duration.
func (c Config) DashboardCacheTTL() time.Duration {
	return time.Duration(c.DashboardCacheTTLMS) * time.Millisecond
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8086")
	viper.SetDefault("TIMEZONE", "Asia/Kolkata")
	// Dashboard snapshots may be a few hundred milliseconds stale; the TTL
	// stays inside that bound by default.
	viper.SetDefault("DASHBOARD_CACHE_TTL_MS", 500)
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("TIMEZONE")
	_ = viper.BindEnv("DASHBOARD_CACHE_TTL_MS")

	if err = viper.Unmarshal(&config); err != nil {
		return
	}
	if config.DatabaseURL == "" {
		return config, fmt.Errorf("DATABASE_URL is required")
	}
	if config.JWTSecret == "" {
		return config, fmt.Errorf("JWT_SECRET is required")
	}
	if _, err = time.LoadLocation(config.Timezone); err != nil {
		return config, fmt.Errorf("invalid TIMEZONE %q: %w", config.Timezone, err)
	}
	return config, nil
}

// Location resolves the configured canonical timezone. LoadConfig has already
// validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
