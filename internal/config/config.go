package config

import (
	"fmt"
	"log"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverBadger   = "badger"
)

type Config struct {
	Environment   string `env:"ENV,default=development"`
	TelegramToken string `env:"TELEGRAM_TOKEN"`

	StorageDriver string `env:"STORAGE_DRIVER,default=postgres"`
	DBDSN         string `env:"DB_DSN"`
	BadgerPath    string `env:"BADGER_PATH,default=./data/badger"`

	HTTPAddr string `env:"HTTP_ADDR,default=:8080"`

	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE,default=campus_events"`
	RabbitMQQueue    string `env:"RABBITMQ_QUEUE,default=event_notifications"`

	// Как часто отклонять просроченные предложения
	SweepInterval time.Duration `env:"SWEEP_INTERVAL,default=1m"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for storage driver %q", c.StorageDriver)
		}
	case StorageDriverBadger:
		if c.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required for storage driver %q", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}

	return nil
}

// IsProduction сообщает, запущено ли приложение в боевом окружении
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
