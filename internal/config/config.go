package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Session SessionConfig
	Relay   RelayConfig
	WS      WSConfig
}

type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	StaticDir       string
}

type RedisConfig struct {
	URL          string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type SessionConfig struct {
	// TTL is the lifetime of a minted session token. The store evicts the
	// token once it elapses.
	TTL time.Duration
}

type RelayConfig struct {
	// KeyPattern is the key pattern whose keyspace notifications are
	// relayed to connected clients, e.g. "test" or "jobs:*".
	KeyPattern string
	// DB is the redis database index used in the notification channel name.
	DB int
}

type WSConfig struct {
	SendBufferSize  int
	MaxMessageSize  int64
	RateLimitConns  int
	RateLimitWindow time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("GATEWAY_HOST", "")
	viper.SetDefault("GATEWAY_PORT", "8000")
	viper.SetDefault("GATEWAY_READ_TIMEOUT", 30*time.Second)
	viper.SetDefault("GATEWAY_WRITE_TIMEOUT", 30*time.Second)
	viper.SetDefault("GATEWAY_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("GATEWAY_SHUTDOWN_TIMEOUT", 30*time.Second)
	viper.SetDefault("GATEWAY_STATIC_DIR", "www/static")
	viper.SetDefault("GATEWAY_SESSION_TTL", 6*time.Second)
	viper.SetDefault("GATEWAY_NOTIFY_PATTERN", "test")
	viper.SetDefault("GATEWAY_NOTIFY_DB", 0)
	viper.SetDefault("GATEWAY_WS_SEND_BUFFER", 256)
	viper.SetDefault("GATEWAY_WS_MAX_MESSAGE_SIZE", 4096)
	viper.SetDefault("GATEWAY_WS_RATE_LIMIT_CONNS", 10)
	viper.SetDefault("GATEWAY_WS_RATE_LIMIT_WINDOW", time.Minute)
	viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 100)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
	viper.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Host:            viper.GetString("GATEWAY_HOST"),
			Port:            viper.GetString("GATEWAY_PORT"),
			ReadTimeout:     viper.GetDuration("GATEWAY_READ_TIMEOUT"),
			WriteTimeout:    viper.GetDuration("GATEWAY_WRITE_TIMEOUT"),
			IdleTimeout:     viper.GetDuration("GATEWAY_IDLE_TIMEOUT"),
			ShutdownTimeout: viper.GetDuration("GATEWAY_SHUTDOWN_TIMEOUT"),
			StaticDir:       viper.GetString("GATEWAY_STATIC_DIR"),
		},
		Redis: RedisConfig{
			URL:          viper.GetString("REDIS_URL"),
			MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
			DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
		},
		Session: SessionConfig{
			TTL: viper.GetDuration("GATEWAY_SESSION_TTL"),
		},
		Relay: RelayConfig{
			KeyPattern: viper.GetString("GATEWAY_NOTIFY_PATTERN"),
			DB:         viper.GetInt("GATEWAY_NOTIFY_DB"),
		},
		WS: WSConfig{
			SendBufferSize:  viper.GetInt("GATEWAY_WS_SEND_BUFFER"),
			MaxMessageSize:  viper.GetInt64("GATEWAY_WS_MAX_MESSAGE_SIZE"),
			RateLimitConns:  viper.GetInt("GATEWAY_WS_RATE_LIMIT_CONNS"),
			RateLimitWindow: viper.GetDuration("GATEWAY_WS_RATE_LIMIT_WINDOW"),
		},
	}, nil
}
