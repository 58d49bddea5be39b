// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы хранилища.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config общая структура для хранения настроек
type Config struct {
	Env        string          `yaml:"env" env:"ENV" env-default:"local"`
	Timezone   string          `yaml:"timezone" env:"TIMEZONE" env-default:"America/Argentina/Buenos_Aires"`
	Storage    Storage         `yaml:"storage"`
	Redis      RedisConnection `yaml:"redis_connection"`
	HTTPServer HTTPServer      `yaml:"http_server"`
	RateLimit  RateLimit       `yaml:"rate_limit"`
	Billing    Billing         `yaml:"billing"`
	RabbitMQ   RabbitMQ        `yaml:"rabbitmq"`
	Notifier   Notifier        `yaml:"notifier"`
}

// Storage структура для настройки хранилища платежей, клиентов и товаров
type Storage struct {
	Driver           string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	ConnectionString string `yaml:"connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath   string `yaml:"migrations_path" env-default:"migrations"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RateLimit параметры ограничителя запросов
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"10"`
	Burst int     `yaml:"burst" env-default:"20"`
}

// Billing параметры расчёта членства, дашборда и склада
type Billing struct {
	StockMaxRetries   int           `yaml:"stock_max_retries" env-default:"5"`
	DashboardCacheTTL time.Duration `yaml:"dashboard_cache_ttl" env-default:"1m"`
}

// RabbitMQ параметры подключения к брокеру
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	MaxRetries int           `yaml:"max_retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Notifier параметры рассылки уведомлений об истечении членства
type Notifier struct {
	Interval time.Duration `yaml:"interval" env-default:"1h"`
}

// MustLoad функция для загрузки конфига, путь к файлу берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}
	return &cfg
}

// Validate проверяет согласованность значений.
func (c *Config) Validate() error {
	const op = "config.Validate"
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.ConnectionString == "" {
			return fmt.Errorf("%s: storage.connection_string is required for driver %q", op, DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%s: unknown storage driver %q", op, c.Storage.Driver)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("%s: rate_limit must be positive", op)
	}
	if c.Billing.StockMaxRetries < 1 {
		return fmt.Errorf("%s: billing.stock_max_retries must be >= 1", op)
	}
	if c.Notifier.Interval <= 0 {
		return fmt.Errorf("%s: notifier.interval must be positive", op)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Location возвращает часовой пояс, в котором считается "сегодня".
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Timezone: %s\n"+
			"Storage:\n"+
			"  Driver: %s\n"+
			"  MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RateLimit: %.2f rps, burst %d\n"+
			"Billing:\n"+
			"  StockMaxRetries: %d\n"+
			"  DashboardCacheTTL: %s\n"+
			"Notifier:\n"+
			"  Interval: %s\n",
		c.Env,
		c.Timezone,
		c.Storage.Driver,
		c.Storage.MigrationsPath,
		c.Redis.AddressRedis,
		c.Redis.DB,
		c.HTTPServer.AddressHTTP,
		c.HTTPServer.TimeoutHTTP,
		c.HTTPServer.IdleTimeout,
		c.RateLimit.RPS,
		c.RateLimit.Burst,
		c.Billing.StockMaxRetries,
		c.Billing.DashboardCacheTTL,
		c.Notifier.Interval,
	)
}
