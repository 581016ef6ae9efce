package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Harvest"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"harvest"`
	}

	Redis struct {
		URL string `envconfig:"REDIS_URL" default:"localhost:6379"`
	}

	Kafka struct {
		Brokers   []string `envconfig:"KAFKA_BROKERS"`
		PushTopic string   `envconfig:"KAFKA_PUSH_TOPIC" default:"collections.push"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
		JWTSecret   string        `envconfig:"JWT_SECRET"`
	}

	Collections struct {
		RunAt          string        `envconfig:"COLLECTIONS_RUN_AT" default:"08:00"`
		Timezone       string        `envconfig:"COLLECTIONS_TIMEZONE" default:"Africa/Nairobi"`
		Concurrency    int           `envconfig:"COLLECTIONS_CONCURRENCY" default:"8"`
		ChannelTimeout time.Duration `envconfig:"COLLECTIONS_CHANNEL_TIMEOUT" default:"10s"`
		RunLockTTL     time.Duration `envconfig:"COLLECTIONS_RUN_LOCK_TTL" default:"2h"`
		DefaultRegion  string        `envconfig:"DEFAULT_REGION" default:"KE"`
	}

	Gateways struct {
		ChatURL    string `envconfig:"GATEWAY_CHAT_URL"`
		ChatToken  string `envconfig:"GATEWAY_CHAT_TOKEN"`
		SMSURL     string `envconfig:"GATEWAY_SMS_URL"`
		SMSToken   string `envconfig:"GATEWAY_SMS_TOKEN"`
		EmailURL   string `envconfig:"GATEWAY_EMAIL_URL"`
		EmailToken string `envconfig:"GATEWAY_EMAIL_TOKEN"`
		VoiceURL   string `envconfig:"GATEWAY_VOICE_URL"`
		VoiceToken string `envconfig:"GATEWAY_VOICE_TOKEN"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location resolves the collections timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Collections.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// RunAt parses COLLECTIONS_RUN_AT as HH:MM.
func (c *Config) RunAt() (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(c.Collections.RunAt))
	if err != nil {
		return 0, 0, fmt.Errorf("parsing run time %q: %w", c.Collections.RunAt, err)
	}

	return t.Hour(), t.Minute(), nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Collections.Concurrency < 1 {
		cfg.Collections.Concurrency = 1
	}

	return &cfg, nil
}
