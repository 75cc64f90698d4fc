package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	OtpuskAPI OtpuskAPIConfig `mapstructure:"otpusk_api"`
	Search    SearchConfig    `mapstructure:"search"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	EnableCORS   bool          `mapstructure:"enable_cors"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	PoolSize int    `mapstructure:"pool_size"`
}

type OtpuskAPIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  float64       `mapstructure:"rate_limit"`
	BurstLimit int           `mapstructure:"burst_limit"`

	CircuitBreakerMaxFailures  int `mapstructure:"circuit_breaker_max_failures"`
	CircuitBreakerResetSeconds int `mapstructure:"circuit_breaker_reset_seconds"`
}

type SearchConfig struct {
	EmptyRetryBudget int           `mapstructure:"empty_retry_budget"`
	NetworkRetries   int           `mapstructure:"network_retries"`
	RetryBackoff     time.Duration `mapstructure:"retry_backoff"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func LoadConfig() (*Config, error) {
	var err error
	if err = gotenv.Load("../.env"); err != nil {
		_ = gotenv.Load()
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.UnmarshalKey("tours", &config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	expandConfigEnvVars(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func expandConfigEnvVars(config *Config) {
	config.Server.Host = os.ExpandEnv(config.Server.Host)

	config.Redis.Host = os.ExpandEnv(config.Redis.Host)
	config.Redis.Password = os.ExpandEnv(config.Redis.Password)

	config.OtpuskAPI.BaseURL = os.ExpandEnv(config.OtpuskAPI.BaseURL)
	config.OtpuskAPI.APIKey = os.ExpandEnv(config.OtpuskAPI.APIKey)
}

func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) Validate() error {
	if c.OtpuskAPI.BaseURL == "" {
		return fmt.Errorf("otpusk API base URL is required")
	}

	if !strings.HasPrefix(c.OtpuskAPI.BaseURL, "http://") && !strings.HasPrefix(c.OtpuskAPI.BaseURL, "https://") {
		c.OtpuskAPI.BaseURL = "https://" + c.OtpuskAPI.BaseURL
	}

	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("redis host is required when redis is enabled")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Search.RetryBackoff < 0 || c.Search.TickInterval < 0 {
		return fmt.Errorf("search timings must not be negative")
	}

	return nil
}
