package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Config holds server configuration from environment.
type Config struct {
	HTTPPort         string        `env:"HTTP_PORT,default=5001"`
	LogLevel         string        `env:"LOG_LEVEL,default=info"`
	CORSAllowOrigins string        `env:"CORS_ALLOW_ORIGINS,default=*"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,default=15s"`
	RedisURL         string        `env:"REDIS_URL"`
	RedisPoolSize    int           `env:"REDIS_POOL_SIZE,default=50"`
	CacheTTL         time.Duration `env:"CACHE_TTL,default=5m"`
	KafkaBrokers     string        `env:"KAFKA_BROKERS"`
	KafkaTopic       string        `env:"KAFKA_TODO_TOPIC,default=todo-events"`
	KafkaPartitions  int           `env:"KAFKA_PARTITIONS,default=4"`
}

// ClientConfig holds configuration for the terminal client.
type ClientConfig struct {
	APIURL   string        `env:"TODO_API_URL,default=http://localhost:5001/api"`
	Timeout  time.Duration `env:"TODO_CLIENT_TIMEOUT,default=10s"`
	LogFile  string        `env:"TODO_LOG_FILE,default=todo.log"`
	LogLevel string        `env:"LOG_LEVEL,default=info"`
}

var (
	cfg     *Config
	cfgErr  error
	cfgOnce sync.Once
)

// LoadEnvFile reads a .env file into the environment without overriding
// variables that are already set. A missing file is not an error.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// Load decodes the server config from the environment.
func Load() (*Config, error) {
	var c Config
	if _, err := env.UnmarshalFromEnviron(&c); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if c.HTTPPort == "" {
		return nil, fmt.Errorf("config error: HTTP_PORT is empty")
	}
	return &c, nil
}

// Get returns the application config (loads once from env).
func Get() (*Config, error) {
	cfgOnce.Do(func() {
		cfg, cfgErr = Load()
	})
	return cfg, cfgErr
}

// LoadClient decodes the client config from the environment.
func LoadClient() (*ClientConfig, error) {
	var c ClientConfig
	if _, err := env.UnmarshalFromEnviron(&c); err != nil {
		return nil, fmt.Errorf("client config error: %w", err)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	return &c, nil
}

// Brokers splits KAFKA_BROKERS on commas. Empty means events are disabled.
func (c *Config) Brokers() []string {
	var out []string
	for _, s := range strings.Split(c.KafkaBrokers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// AllowedOrigins splits CORS_ALLOW_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, s := range strings.Split(c.CORSAllowOrigins, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
