package config

import (
	"fmt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"time"
)

type Config struct {
	ServiceName   string
	ServerAddress string

	DBName     string
	DBPassword string
	DBUser     string
	DBPort     string
	DBHost     string

	Env         string
	LogLevel    string
	HTTPTimeout int32
	WaitTimeout time.Duration

	DefaultProvider    string
	GeolocationTimeout time.Duration
	ClockMode          string

	IPAPIBaseURL      string
	IPAPIMaxRetries   int
	IPAPIRetryBackoff time.Duration

	StaticLatitude  float64
	StaticLongitude float64

	ViewTTL        time.Duration
	SweepInterval  time.Duration
	CacheTTL       time.Duration
	FailedCacheTTL time.Duration
}

func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVICE_NAME", "season-service")

	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:3000")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("HTTP_TIMEOUT", 175)
	v.SetDefault("WAIT_TIMEOUT", 30*time.Second)
	v.SetDefault("GEOLOCATION_PROVIDER", "client")
	v.SetDefault("GEOLOCATION_TIMEOUT", 2*time.Minute)
	v.SetDefault("CLOCK_MODE", "zone")
	v.SetDefault("IP_API_BASE_URL", "http://ip-api.com")
	v.SetDefault("IP_API_MAX_RETRIES", 2)
	v.SetDefault("IP_API_RETRY_BACKOFF", 200*time.Millisecond)
	v.SetDefault("VIEW_TTL", 15*time.Minute)
	v.SetDefault("SWEEP_INTERVAL", time.Minute)
	v.SetDefault("CACHE_TTL", 6*time.Hour)
	v.SetDefault("FAILED_CACHE_TTL", 2*time.Minute)

	v.AutomaticEnv()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Warn().Msg("No .env file found, using environment variables only")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Config file loaded")
	}

	config := &Config{
		ServiceName:        v.GetString("SERVICE_NAME"),
		ServerAddress:      v.GetString("SERVER_ADDRESS"),
		DBName:             v.GetString("DATABASE_NAME"),
		DBPassword:         v.GetString("DATABASE_PASSWORD"),
		DBUser:             v.GetString("DATABASE_USER"),
		DBPort:             v.GetString("DATABASE_PORT"),
		DBHost:             v.GetString("DATABASE_HOST"),
		Env:                v.GetString("ENV"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		HTTPTimeout:        v.GetInt32("HTTP_TIMEOUT"),
		WaitTimeout:        v.GetDuration("WAIT_TIMEOUT"),
		DefaultProvider:    v.GetString("GEOLOCATION_PROVIDER"),
		GeolocationTimeout: v.GetDuration("GEOLOCATION_TIMEOUT"),
		ClockMode:          v.GetString("CLOCK_MODE"),
		IPAPIBaseURL:       v.GetString("IP_API_BASE_URL"),
		IPAPIMaxRetries:    v.GetInt("IP_API_MAX_RETRIES"),
		IPAPIRetryBackoff:  v.GetDuration("IP_API_RETRY_BACKOFF"),
		StaticLatitude:     v.GetFloat64("STATIC_LATITUDE"),
		StaticLongitude:    v.GetFloat64("STATIC_LONGITUDE"),
		ViewTTL:            v.GetDuration("VIEW_TTL"),
		SweepInterval:      v.GetDuration("SWEEP_INTERVAL"),
		CacheTTL:           v.GetDuration("CACHE_TTL"),
		FailedCacheTTL:     v.GetDuration("FAILED_CACHE_TTL"),
	}

	if config.StaticLatitude < -90 || config.StaticLatitude > 90 {
		return nil, fmt.Errorf("STATIC_LATITUDE out of range: %v", config.StaticLatitude)
	}

	return config, nil
}

func (c *Config) HTTPTimeoutDuration() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// DatabaseEnabled reports whether view resolutions should be persisted.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}
