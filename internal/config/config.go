package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/forecast"
)

var (
	instance *Config
	once     sync.Once
)

// Config is the file-backed application configuration. Connection
// credentials come from the environment, not from this file.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Monitoring struct {
		Locations            []string `yaml:"locations"`
		FetchIntervalMinutes int      `yaml:"fetch_interval_minutes"`
		RetentionDays        int      `yaml:"retention_days"`
		DefaultHistoryHours  int      `yaml:"default_history_hours"`
		MaxHistoryHours      int      `yaml:"max_history_hours"`
	} `yaml:"monitoring"`
	Cache struct {
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	Forecast forecast.Config `yaml:"forecast"`
}

func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		instance = &Config{}
		instance.Forecast = forecast.DefaultConfig()

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file %s: %w", configPath, readErr)
			return
		}

		if parseErr := yaml.Unmarshal(data, instance); parseErr != nil {
			err = fmt.Errorf("failed to parse config: %w", parseErr)
			return
		}

		instance.applyDefaults()

		if validateErr := instance.validate(); validateErr != nil {
			err = validateErr
			return
		}
	})

	return instance, err
}

func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Monitoring.FetchIntervalMinutes == 0 {
		c.Monitoring.FetchIntervalMinutes = 15
	}
	if c.Monitoring.RetentionDays == 0 {
		c.Monitoring.RetentionDays = 30
	}
	if c.Monitoring.DefaultHistoryHours == 0 {
		c.Monitoring.DefaultHistoryHours = 24
	}
	if c.Monitoring.MaxHistoryHours == 0 {
		c.Monitoring.MaxHistoryHours = 168
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
}

func (c *Config) validate() error {
	if len(c.Monitoring.Locations) == 0 {
		return fmt.Errorf("monitoring.locations cannot be empty")
	}
	if c.Monitoring.FetchIntervalMinutes < 1 {
		return fmt.Errorf("monitoring.fetch_interval_minutes must be positive")
	}
	if c.Forecast.WindowSize < c.Forecast.MinForecastReadings {
		return fmt.Errorf("forecast.window_size must be at least forecast.min_forecast_readings")
	}
	return nil
}

// FetchInterval returns the collection cadence as a duration.
func (c *Config) FetchInterval() time.Duration {
	return time.Duration(c.Monitoring.FetchIntervalMinutes) * time.Minute
}

// CacheTTL returns the response cache lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
