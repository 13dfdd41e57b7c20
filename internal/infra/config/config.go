package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skyviewer/nightlydigest-stats/pkg/dayobs"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	Digest DigestConfig `yaml:"digest"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// DigestConfig carries everything the digest pipeline needs for one request:
// upstream and cache endpoints, bearer tokens, and the deployment overrides
// that can force a mode or a date window. Values may change between
// invocations, so handlers re-read them via LoadDigest rather than trusting
// the copy captured at boot.
type DigestConfig struct {
	APIEndpoint   string `yaml:"apiEndpoint"`
	CacheEndpoint string `yaml:"cacheEndpoint"`
	Instrument    string `yaml:"instrument"`

	UpstreamToken string `yaml:"upstreamToken"`
	CacheToken    string `yaml:"cacheToken"`
	AuthToken     string `yaml:"authToken"`

	// Deployment overrides; empty means "use the request or the default".
	Mode        string `yaml:"mode"`
	DayObsStart string `yaml:"dayObsStart"`
	DayObsEnd   string `yaml:"dayObsEnd"`

	SurveyStart string `yaml:"surveyStart"`
	WindowDays  int    `yaml:"windowDays"`

	// Optional direct Valkey write target; when set it replaces the HTTP
	// cache relay.
	ValkeyAddr string `yaml:"valkeyAddr"`

	// Informational expected exposure total for the whole survey.
	ExpectedTotalExposures int `yaml:"expectedTotalExposures"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDigest re-resolves the digest section against the current environment.
// Called at the top of every request so that token rotations and forced
// window overrides take effect without a restart.
func LoadDigest(base DigestConfig) DigestConfig {
	cfg := base
	applyDigestEnvOverrides(&cfg)
	return cfg
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		cfg.HTTP.AllowedOrigins = origins
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	applyDigestEnvOverrides(&cfg.Digest)
}

func applyDigestEnvOverrides(cfg *DigestConfig) {
	if v := os.Getenv("ND_API_ENDPOINT"); v != "" {
		cfg.APIEndpoint = v
	}
	if v := os.Getenv("ND_CACHE_ENDPOINT"); v != "" {
		cfg.CacheEndpoint = v
	}
	if v := os.Getenv("ND_INSTRUMENT"); v != "" {
		cfg.Instrument = v
	}
	if v := os.Getenv("BEARER_TOKEN"); v != "" {
		cfg.UpstreamToken = v
	}
	if v := os.Getenv("REDIS_CACHE_TOKEN"); v != "" {
		cfg.CacheToken = v
	}
	if v := os.Getenv("AUTH_TOKEN"); v != "" {
		cfg.AuthToken = v
	}
	if v := os.Getenv("MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("DAY_OBS_START"); v != "" {
		cfg.DayObsStart = v
	}
	if v := os.Getenv("DAY_OBS_END"); v != "" {
		cfg.DayObsEnd = v
	}
	if v := os.Getenv("SURVEY_START_DATE"); v != "" {
		cfg.SurveyStart = v
	}
	if v := os.Getenv("REACC_WINDOW_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.WindowDays = parsed
		}
	}
	if v := os.Getenv("CACHE_VALKEY_ADDR"); v != "" {
		cfg.ValkeyAddr = v
	}
	if v := os.Getenv("TOTAL_EXPECTED_EXPOSURES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.ExpectedTotalExposures = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		Digest: DigestConfig{
			APIEndpoint:   "https://usdf-rsp-dev.slac.stanford.edu/nightlydigest/api/exposures",
			CacheEndpoint: "https://us-west1-skyviewer.cloudfunctions.net/redis-client/nightly-digest-stats",
			Instrument:    "LSSTCam",
			SurveyStart:   "20250620",
			WindowDays:    30,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return c.Digest.Validate()
}

// Validate checks the digest section; empty overrides are fine, present
// ones must be well formed.
func (c DigestConfig) Validate() error {
	if c.APIEndpoint == "" {
		return errors.New("digest.apiEndpoint cannot be empty")
	}
	if c.CacheEndpoint == "" && c.ValkeyAddr == "" {
		return errors.New("digest.cacheEndpoint cannot be empty unless a valkey address is set")
	}
	if c.Instrument == "" {
		return errors.New("digest.instrument cannot be empty")
	}
	if c.WindowDays <= 0 {
		return errors.New("digest.windowDays must be positive")
	}
	for _, field := range []struct{ name, value string }{
		{"digest.dayObsStart", c.DayObsStart},
		{"digest.dayObsEnd", c.DayObsEnd},
		{"digest.surveyStart", c.SurveyStart},
	} {
		if field.value == "" {
			continue
		}
		if _, err := dayobs.Parse(field.value); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}
	return nil
}
