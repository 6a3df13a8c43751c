package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	API         APIConfig         `mapstructure:"api"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Gemini      GeminiConfig      `mapstructure:"gemini"`
	Log         LogConfig         `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CredentialsConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	// Key encrypts the credential file at rest. Empty means plaintext.
	Key string `mapstructure:"key"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type GeminiConfig struct {
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault("api.base_url", "http://127.0.0.1:8000/api")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("credentials.backend", BackendFile)
	v.SetDefault("credentials.path", filepath.Join(home, ".quizclient", "credentials.json"))
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.prefix", "quizclient")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.requests_per_minute", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads quizclient.yaml from path (if present) and QUIZCLIENT_* environment
// variables. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("quizclient")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("QUIZCLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("api.base_url", "QUIZCLIENT_API_BASE_URL", "API_BASE_URL")
	v.BindEnv("gemini.api_key", "QUIZCLIENT_GEMINI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("credentials.key", "QUIZCLIENT_CREDENTIALS_KEY", "CRYPTO_KEY")
	v.BindEnv("redis.addr", "QUIZCLIENT_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("redis.password", "QUIZCLIENT_REDIS_PASSWORD", "REDIS_PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Credentials.Backend {
	case BackendFile:
		if c.Credentials.Path == "" {
			return fmt.Errorf("credentials.path is required for the file backend")
		}
		if c.Credentials.Key != "" && len(c.Credentials.Key) != KeySize {
			return fmt.Errorf("credentials.key must be %d bytes, got %d", KeySize, len(c.Credentials.Key))
		}
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown credentials.backend %q", c.Credentials.Backend)
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	return nil
}
