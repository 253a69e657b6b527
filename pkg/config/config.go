package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/departures-rss/pkg/util"
	"gopkg.in/yaml.v3"
)

const EnvironmentPrefix = "DEPARTURES_RSS_"

const (
	defaultStopID            = "8006336"
	defaultStopName          = "Wennigsen (Deister) Bahnhof"
	defaultAPIURL            = "https://v6.db.transport.rest"
	defaultResults           = 10
	defaultWindow            = "PT120M"
	defaultWindowMinutes     = 120
	defaultLanguage          = "de"
	defaultTimeout           = 10 * time.Second
	defaultFeedLink          = "https://www.gvh.de"
	defaultListen            = "0.0.0.0:5000"
	defaultEnrichConcurrency = 1
	defaultStopoverCacheTTL  = 2 * time.Minute
)

type Config struct {
	StopID   string `yaml:"stopId" validate:"required"`
	StopName string `yaml:"stopName" validate:"required"`

	APIURL   string        `yaml:"apiUrl" validate:"required,url"`
	Results  int           `yaml:"results" validate:"gte=1"`
	Window   string        `yaml:"window" validate:"required"`
	Language string        `yaml:"language" validate:"required"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`

	FeedLink string `yaml:"feedLink" validate:"omitempty,url"`
	Listen   string `yaml:"listen" validate:"required"`

	EnrichConcurrency int `yaml:"enrichConcurrency" validate:"gte=1"`

	Redis RedisConfig `yaml:"redis"`

	// WindowMinutes is resolved from Window by Load
	WindowMinutes int `yaml:"-" validate:"gte=1"`
}

// RedisConfig enables the stopover cache when Address is set
type RedisConfig struct {
	Address          string        `yaml:"address"`
	Password         string        `yaml:"password"`
	Database         int           `yaml:"database" validate:"gte=0"`
	StopoverCacheTTL time.Duration `yaml:"stopoverCacheTTL" validate:"gte=0"`
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

func Default() *Config {
	return &Config{
		StopID:            defaultStopID,
		StopName:          defaultStopName,
		APIURL:            defaultAPIURL,
		Results:           defaultResults,
		Window:            defaultWindow,
		Language:          defaultLanguage,
		Timeout:           defaultTimeout,
		FeedLink:          defaultFeedLink,
		Listen:            defaultListen,
		EnrichConcurrency: defaultEnrichConcurrency,
		WindowMinutes:     defaultWindowMinutes,
		Redis: RedisConfig{
			StopoverCacheTTL: defaultStopoverCacheTTL,
		},
	}
}

// Load layers the defaults, an optional YAML file and the DEPARTURES_RSS_ environment, then validates the result
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvironment(util.GetPrefixedEnvironmentVariables(EnvironmentPrefix)); err != nil {
		return nil, err
	}

	windowMinutes, err := ParseWindow(cfg.Window)
	if err != nil {
		return nil, err
	}
	cfg.WindowMinutes = windowMinutes

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvironment(env map[string]string) error {
	stringFields := map[string]*string{
		"STOP_ID":        &c.StopID,
		"STOP_NAME":      &c.StopName,
		"API_URL":        &c.APIURL,
		"WINDOW":         &c.Window,
		"LANGUAGE":       &c.Language,
		"FEED_LINK":      &c.FeedLink,
		"LISTEN":         &c.Listen,
		"REDIS_ADDRESS":  &c.Redis.Address,
		"REDIS_PASSWORD": &c.Redis.Password,
	}
	for key, target := range stringFields {
		if value, ok := env[key]; ok {
			*target = value
		}
	}

	intFields := map[string]*int{
		"RESULTS":            &c.Results,
		"ENRICH_CONCURRENCY": &c.EnrichConcurrency,
		"REDIS_DATABASE":     &c.Redis.Database,
	}
	for key, target := range intFields {
		if value, ok := env[key]; ok {
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s%s must be an integer: %w", EnvironmentPrefix, key, err)
			}
			*target = n
		}
	}

	durationFields := map[string]*time.Duration{
		"TIMEOUT":            &c.Timeout,
		"STOPOVER_CACHE_TTL": &c.Redis.StopoverCacheTTL,
	}
	for key, target := range durationFields {
		if value, ok := env[key]; ok {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%s%s must be a duration: %w", EnvironmentPrefix, key, err)
			}
			*target = d
		}
	}

	return nil
}

// ParseWindow accepts an ISO-8601 duration such as PT2H or a plain number of minutes
func ParseWindow(window string) (int, error) {
	if minutes, err := strconv.Atoi(window); err == nil {
		return minutes, nil
	}

	duration, err := iso8601.ParseISO8601(window)
	if err != nil {
		return 0, fmt.Errorf("window %q is not an ISO-8601 duration: %w", window, err)
	}

	// Calendar components depend on the reference date, anchor to a fixed one
	reference := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

	return int(duration.Shift(reference).Sub(reference) / time.Minute), nil
}
