// Package config resolves sentiboard settings from defaults, config file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/gauthierbraillon/sentiboard/internal/sentiment"
)

// EnvPrefix is prepended to every environment variable sentiboard reads.
const EnvPrefix = "SENTIBOARD"

const (
	DefaultAPIURL    = "http://127.0.0.1:8000"
	DefaultAddr      = ":8080"
	DefaultCacheTTL  = 5 * time.Minute
	DefaultCacheSize = 64
	DefaultTimeout   = 30 * time.Second

	maxListBound = 50
)

// Config is the validated configuration.
type Config struct {
	APIURL    string
	Token     string
	ConfigDir string
	LogLevel  string
	LogEnv    string
	Filter    sentiment.TimeFilter
	Top       int
	Topics    int
	Stopwords bool
	CacheTTL  time.Duration
	CacheSize int
	RedisAddr string
	Addr      string
	Timeout   time.Duration
}

// New returns a viper instance with sentiboard defaults and environment binding.
// configFile overrides the search for .sentiboard.yaml in the working and home directories.
func New(configFile string) *viper.Viper {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".sentiboard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api-url", DefaultAPIURL)
	v.SetDefault("token", "")
	v.SetDefault("config-dir", defaultConfigDir())
	v.SetDefault("log-level", "info")
	v.SetDefault("log-env", "development")
	v.SetDefault("filter", string(sentiment.Month))
	v.SetDefault("top", sentiment.DefaultTopPostsBound)
	v.SetDefault("topics", sentiment.DefaultMaxTopics)
	v.SetDefault("stopwords", false)
	v.SetDefault("cache-ttl", DefaultCacheTTL)
	v.SetDefault("cache-size", DefaultCacheSize)
	v.SetDefault("redis-addr", "")
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("timeout", DefaultTimeout)

	return v
}

// LoadDotEnv loads environment variables from a .env file if one exists.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file, if any, and validates the merged settings.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	filter, err := sentiment.ParseTimeFilter(v.GetString("filter"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid filter: %w", err)
	}

	cfg := Config{
		APIURL:    strings.TrimRight(v.GetString("api-url"), "/"),
		Token:     v.GetString("token"),
		ConfigDir: v.GetString("config-dir"),
		LogLevel:  v.GetString("log-level"),
		LogEnv:    v.GetString("log-env"),
		Filter:    filter,
		Top:       v.GetInt("top"),
		Topics:    v.GetInt("topics"),
		Stopwords: v.GetBool("stopwords"),
		CacheTTL:  v.GetDuration("cache-ttl"),
		CacheSize: v.GetInt("cache-size"),
		RedisAddr: v.GetString("redis-addr"),
		Addr:      v.GetString("addr"),
		Timeout:   v.GetDuration("timeout"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.APIURL == "" {
		return errors.New("api-url must not be empty")
	}
	if c.Top < 1 || c.Top > maxListBound {
		return fmt.Errorf("top must be between 1 and %d, got %d", maxListBound, c.Top)
	}
	if c.Topics < 1 || c.Topics > maxListBound {
		return fmt.Errorf("topics must be between 1 and %d, got %d", maxListBound, c.Topics)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache-ttl must not be negative, got %s", c.CacheTTL)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache-size must be at least 1, got %d", c.CacheSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// defaultConfigDir returns ~/.config/sentiboard, or a relative directory when home is unknown.
func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "sentiboard")
	}
	return filepath.Join(home, ".config", "sentiboard")
}
