// Package config reads the application settings from APP_ prefixed
// environment variables. A .env file in the working directory is loaded
// first when present.
//
// The first underscore after the prefix separates the section from the key:
// APP_HTTP_READ_TIMEOUT maps to http.read_timeout, APP_ENV to env.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// loads .env into the process environment
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/SergeyParamoshkin/blog/internal/database"
)

const Prefix = "APP_"

type Config struct {
	Env   string      `koanf:"env" validate:"required,oneof=local development production test"`
	HTTP  HTTPConfig  `koanf:"http"`
	DB    DBConfig    `koanf:"db"`
	Auth  AuthConfig  `koanf:"auth"`
	Redis RedisConfig `koanf:"redis"`
	AMQP  AMQPConfig  `koanf:"amqp"`
	Log   LogConfig   `koanf:"log"`
}

type HTTPConfig struct {
	Addr         string        `koanf:"addr" validate:"required"`
	DiagAddr     string        `koanf:"diag_addr" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
}

type DBConfig struct {
	Driver          string        `koanf:"driver" validate:"required,oneof=sqlite postgres mysql"`
	DSN             string        `koanf:"dsn" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	SlowQuery       time.Duration `koanf:"slow_query"`
	Debug           bool          `koanf:"debug"`
}

type AuthConfig struct {
	Secret   string        `koanf:"secret" validate:"required,min=16"`
	TokenTTL time.Duration `koanf:"token_ttl" validate:"gt=0"`
}

// RedisConfig enables the popularity ranking when Addr is set.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

// AMQPConfig enables domain event publishing when URL is set.
type AMQPConfig struct {
	URL      string `koanf:"url"`
	Exchange string `koanf:"exchange" validate:"required"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the settings used for every key missing from the
// environment.
func Default() *Config {
	return &Config{
		Env: "production",
		HTTP: HTTPConfig{
			Addr:         ":3333",
			DiagAddr:     ":3334",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		DB: DBConfig{
			Driver:          database.DriverSQLite,
			DSN:             "file:blog.db?cache=shared",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			SlowQuery:       200 * time.Millisecond,
		},
		Auth: AuthConfig{
			TokenTTL: 6000 * time.Second,
		},
		AMQP: AMQPConfig{
			Exchange: "blog.events",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults and the environment and
// validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(Prefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, Prefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Database converts the db section into the database package settings.
func (c *Config) Database() database.Config {
	return database.Config{
		Driver:          c.DB.Driver,
		DSN:             c.DB.DSN,
		MaxOpenConns:    c.DB.MaxOpenConns,
		MaxIdleConns:    c.DB.MaxIdleConns,
		ConnMaxLifetime: c.DB.ConnMaxLifetime,
		SlowQuery:       c.DB.SlowQuery,
		Debug:           c.DB.Debug,
	}
}
