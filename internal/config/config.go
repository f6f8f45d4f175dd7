// Package config loads Ragtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"

	defaultSecretKey = "anyrandomstringofevents#123"
)

var ErrDefaultSecret = errors.New("SECRET_KEY must be set in production")

type Config struct {
	Env       string `env:"RAGTIME_ENV" envDefault:"development"`
	Addr      string `env:"RAGTIME_ADDR" envDefault:":8080"`
	SecretKey string `env:"SECRET_KEY" envDefault:"anyrandomstringofevents#123"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"` // sqlite | mysql
	DatabaseURL    string `env:"DATABASE_URL"`

	// 为空时启动内嵌 redis
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	MailServer        string `env:"MAIL_SERVER"`
	MailPort          int    `env:"MAIL_PORT" envDefault:"587"`
	MailUsername      string `env:"MAIL_USERNAME"`
	MailPassword      string `env:"MAIL_PASSWORD"`
	MailSender        string `env:"RAGTIME_MAIL_SENDER" envDefault:"Ragtime Admin <no-reply@ragtime.local>"`
	MailSubjectPrefix string `env:"RAGTIME_MAIL_SUBJECT_PREFIX" envDefault:"Ragtime - "`

	AdminName  string `env:"RAGTIME_ADMIN"`
	AdminEmail string `env:"RAGTIME_ADMIN_EMAIL"`

	CompsPerPage     int `env:"RAGTIME_COMPS_PER_PAGE" envDefault:"20"`
	FollowersPerPage int `env:"RAGTIME_FOLLOWERS_PER_PAGE" envDefault:"20"`

	HTTPSRedirect bool `env:"HTTPS_REDIRECT" envDefault:"false"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"ragtime.social"`

	LogLevel  string `env:"RAGTIME_LOG_LEVEL" envDefault:"info"`
	LogFolder string `env:"RAGTIME_LOG_FOLDER"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL(cfg.Env)
	}
	if cfg.Env == EnvProduction && cfg.SecretKey == defaultSecretKey {
		return nil, ErrDefaultSecret
	}
	return cfg, nil
}

func defaultDatabaseURL(environment string) string {
	switch environment {
	case EnvTesting:
		return "data-test.sqlite"
	case EnvProduction:
		return "data.sqlite"
	}
	return "data-dev.sqlite"
}

func (c *Config) IsDebug() bool {
	return c.Env == EnvDevelopment
}

// MailEnabled SMTP 未配置时走日志发送
func (c *Config) MailEnabled() bool {
	return c.MailServer != ""
}
