package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"go.yaml.in/yaml/v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	ExchangeAPI ExchangeAPIConfig `yaml:"exchange_api"`
	Cache       CacheConfig       `yaml:"cache"`
	Log         LogConfig         `yaml:"log"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type ExchangeAPIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	SymbolsPath string        `yaml:"symbols_path"`
	LatestPath  string        `yaml:"latest_path"`
	ConvertPath string        `yaml:"convert_path"`
	AccessKey   string        `yaml:"access_key"`
	Timeout     time.Duration `yaml:"timeout"`
	DNSRefresh  time.Duration `yaml:"dns_refresh"` // 0 disables the DNS cache
}

// CacheConfig holds the two independent TTLs. The supported currency set
// changes far less often than rates, so its TTL is much longer.
type CacheConfig struct {
	SymbolsTTL time.Duration `yaml:"symbols_ttl"`
	RatesTTL   time.Duration `yaml:"rates_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TelemetryConfig struct {
	MetricsEnabled bool          `yaml:"metrics_enabled"`
	Tracing        TracingConfig `yaml:"tracing"`
}

type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`    // OTLP gRPC endpoint
	SampleRate float64 `yaml:"sample_rate"` // 0.0 to 1.0
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		ExchangeAPI: ExchangeAPIConfig{
			BaseURL:     "http://api.exchangeratesapi.io/v1/",
			SymbolsPath: "symbols",
			LatestPath:  "latest",
			ConvertPath: "convert",
			Timeout:     10 * time.Second,
			DNSRefresh:  5 * time.Minute,
		},
		Cache: CacheConfig{
			SymbolsTTL: 24 * time.Hour,
			RatesTTL:   time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			MetricsEnabled: true,
			Tracing: TracingConfig{
				Endpoint:   "localhost:4317",
				SampleRate: 1.0,
			},
		},
	}
}

// LoadConfig builds the configuration from defaults, then the optional YAML
// file at path, then environment variables.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(expandEnv(data), config); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvInt("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.ExchangeAPI.BaseURL = getEnvString("EXCHANGE_API_BASE_URL", c.ExchangeAPI.BaseURL)
	c.ExchangeAPI.SymbolsPath = getEnvString("EXCHANGE_API_SYMBOLS_PATH", c.ExchangeAPI.SymbolsPath)
	c.ExchangeAPI.LatestPath = getEnvString("EXCHANGE_API_LATEST_PATH", c.ExchangeAPI.LatestPath)
	c.ExchangeAPI.ConvertPath = getEnvString("EXCHANGE_API_CONVERT_PATH", c.ExchangeAPI.ConvertPath)
	c.ExchangeAPI.AccessKey = getEnvString("EXCHANGE_API_ACCESS_KEY", c.ExchangeAPI.AccessKey)
	c.ExchangeAPI.Timeout = getEnvDuration("EXCHANGE_API_TIMEOUT", c.ExchangeAPI.Timeout)
	c.ExchangeAPI.DNSRefresh = getEnvDuration("EXCHANGE_API_DNS_REFRESH", c.ExchangeAPI.DNSRefresh)

	c.Cache.SymbolsTTL = getEnvDuration("CACHE_SYMBOLS_TTL", c.Cache.SymbolsTTL)
	c.Cache.RatesTTL = getEnvDuration("CACHE_RATES_TTL", c.Cache.RatesTTL)

	c.Log.Level = getEnvString("LOG_LEVEL", c.Log.Level)

	c.Telemetry.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.Telemetry.MetricsEnabled)
	c.Telemetry.Tracing.Enabled = getEnvBool("TRACING_ENABLED", c.Telemetry.Tracing.Enabled)
	c.Telemetry.Tracing.Endpoint = getEnvString("TRACING_ENDPOINT", c.Telemetry.Tracing.Endpoint)
	c.Telemetry.Tracing.SampleRate = getEnvFloat("TRACING_SAMPLE_RATE", c.Telemetry.Tracing.SampleRate)
}

func (c *Config) Validate() error {
	var errs []error

	if c.ExchangeAPI.BaseURL == "" {
		errs = append(errs, errors.New("exchange_api.base_url is required"))
	} else if u, err := url.Parse(c.ExchangeAPI.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("exchange_api.base_url %q is not an absolute URL", c.ExchangeAPI.BaseURL))
	}
	if c.ExchangeAPI.SymbolsPath == "" || c.ExchangeAPI.LatestPath == "" || c.ExchangeAPI.ConvertPath == "" {
		errs = append(errs, errors.New("exchange_api resource paths must not be empty"))
	}
	if c.ExchangeAPI.Timeout <= 0 {
		errs = append(errs, errors.New("exchange_api.timeout must be positive"))
	}
	if c.Cache.SymbolsTTL <= 0 {
		errs = append(errs, errors.New("cache.symbols_ttl must be positive"))
	}
	if c.Cache.RatesTTL <= 0 {
		errs = append(errs, errors.New("cache.rates_ttl must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} patterns with environment variable values.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(varName); ok {
			return []byte(val)
		}
		return match
	})
}

func getEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid value for %s, using default: %d\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid value for %s, using default: %g\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid value for %s, using default: %t\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid duration for %s, using default: %s\n", key, defaultValue)
		return defaultValue
	}

	return value
}
