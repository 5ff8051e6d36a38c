// Package config loads the settings of the portfolio client from YAML and
// the environment, and builds the components they describe.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-portfolio-client/cache"
	"github.com/goliatone/go-portfolio-client/client"
	"github.com/goliatone/go-portfolio-client/services"
)

const (
	// EnvConfigPath points at the YAML file when no path is given.
	EnvConfigPath = "PORTFOLIO_CONFIG"
	EnvLogLevel   = "PORTFOLIO_LOG_LEVEL"
)

const (
	BackendMemory   = "memory"
	BackendBigCache = "bigcache"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	API        APIConfig        `yaml:"api"`
	Upload     UploadConfig     `yaml:"upload"`
	QueryCache QueryCacheConfig `yaml:"query_cache"`
	LocalCache LocalCacheConfig `yaml:"local_cache"`
	Log        LogConfig        `yaml:"log"`
}

type APIConfig struct {
	BaseURL   string        `yaml:"base_url" validate:"required,url"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	UserAgent string        `yaml:"user_agent"`
}

type UploadConfig struct {
	MaxSize    int64    `yaml:"max_size" validate:"gt=0"`
	Extensions []string `yaml:"extensions" validate:"required,dive,required"`
	MIMETypes  []string `yaml:"mime_types" validate:"required,dive,required"`
}

type QueryCacheConfig struct {
	Capacity           int                          `yaml:"capacity" validate:"gt=0"`
	Shards             int                          `yaml:"shards" validate:"gt=0"`
	EvictionPercentage int                          `yaml:"eviction_percentage" validate:"gte=1,lte=100"`
	EvictionInterval   time.Duration                `yaml:"eviction_interval" validate:"gte=0"`
	Families           map[string]cache.FamilyPolicy `yaml:"families"`
}

type LocalCacheConfig struct {
	Backend    string         `yaml:"backend" validate:"oneof=memory bigcache sqlite postgres redis"`
	Path       string         `yaml:"path" validate:"required_if=Backend sqlite"`
	DSN        string         `yaml:"dsn" validate:"required_if=Backend postgres"`
	URL        string         `yaml:"url" validate:"required_if=Backend redis"`
	Codec      string         `yaml:"codec" validate:"oneof=json msgpack"`
	Prefix     string         `yaml:"prefix"`
	DefaultTTL time.Duration  `yaml:"default_ttl" validate:"gt=0"`
	Timeout    time.Duration  `yaml:"timeout" validate:"gte=0"`
	BigCache   BigCacheConfig `yaml:"bigcache"`
}

type BigCacheConfig struct {
	LifeWindow   time.Duration `yaml:"life_window" validate:"gte=0"`
	MaxSizeMB    int           `yaml:"max_size_mb" validate:"gte=0"`
	MaxEntrySize int           `yaml:"max_entry_size" validate:"gte=0"`
}

type LogConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cc := cache.DefaultConfig()
	up := services.DefaultUploadPolicy()

	return Config{
		API: APIConfig{
			BaseURL:   client.DefaultBaseURL,
			Timeout:   client.DefaultTimeout,
			UserAgent: "go-portfolio-client",
		},
		Upload: UploadConfig{
			MaxSize:    up.MaxSize,
			Extensions: up.Extensions,
			MIMETypes:  up.MIMETypes,
		},
		QueryCache: QueryCacheConfig{
			Capacity:           cc.Capacity,
			Shards:             cc.NumShards,
			EvictionPercentage: cc.EvictionPercentage,
			EvictionInterval:   cc.EvictionInterval,
		},
		LocalCache: LocalCacheConfig{
			Backend:    BackendMemory,
			Codec:      "json",
			Prefix:     "cache_",
			DefaultTTL: 30 * time.Minute,
			Timeout:    5 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, applies the environment and validates
// the result. An empty path falls back to PORTFOLIO_CONFIG, and to the
// defaults alone when that is unset too.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "read config file").
				WithMetadata(map[string]any{"path": path})
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "decode config file").
				WithMetadata(map[string]any{"path": path})
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse decodes YAML over the defaults without reading the environment.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(client.EnvBaseURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the struct rules and the query cache policies. Failures
// come back as a validation error listing every offending field by its
// YAML path.
func (c Config) Validate() error {
	var fields []goerrors.FieldError

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "validate config")
		}
		for _, fe := range verrs {
			fields = append(fields, goerrors.FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: describe(fe),
				Value:   fe.Value(),
			})
		}
	}

	if err := c.QueryCacheConfig().Validate(); err != nil {
		fields = append(fields, goerrors.FieldError{
			Field:   "query_cache",
			Message: err.Error(),
		})
	}

	if len(fields) > 0 {
		return goerrors.NewValidation("invalid configuration", fields...).
			WithTextCode("INVALID_CONFIG")
	}
	return nil
}

func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return fmt.Sprintf("failed %q", fe.Tag())
}
