package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

type Config struct {
	LogLevel   string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string        `yaml:"http-port" env:"HTTP_PORT" env-default:"8080"`
	Store      string        `yaml:"store" env:"STORE" env-default:"memory"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"30m"`
	Redis      Redis         `yaml:"redis"`
	SQLite     SQLite        `yaml:"sqlite"`
	Bot        Bot           `yaml:"bot"`
	Telemetry  Telemetry     `yaml:"telemetry"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type SQLite struct {
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"tictactoe.db"`
}

type Bot struct {
	Difficulty      string        `yaml:"difficulty" env:"BOT_DIFFICULTY" env-default:"hard"`
	Seed            uint64        `yaml:"seed" env:"BOT_SEED"`
	StrictAdjacency bool          `yaml:"strict-adjacency" env:"BOT_STRICT_ADJACENCY"`
	ThinkDelay      time.Duration `yaml:"think-delay" env:"BOT_THINK_DELAY" env-default:"0s"`
}

type Telemetry struct {
	Enabled     bool   `yaml:"enabled" env:"OTEL_ENABLED"`
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"otel-collector:4317"`
	ServiceName string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tictactoe-bot"`
	Stdout      bool   `yaml:"stdout" env:"OTEL_STDOUT"`
}

// Load reads the config file at path, with environment variables taking precedence.
// An empty path reads the environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(cfg)
	} else {
		err = cleanenv.ReadConfig(path, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad - load all configurations, panicking on failure.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreMemory, StoreRedis, StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session-ttl must be positive"))
	}
	if c.Bot.ThinkDelay < 0 {
		errs = append(errs, errors.New("bot think-delay must not be negative"))
	}
	switch c.Bot.Difficulty {
	case "easy", "medium", "hard":
	default:
		errs = append(errs, fmt.Errorf("unknown bot difficulty %q", c.Bot.Difficulty))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.HTTPPort
}
