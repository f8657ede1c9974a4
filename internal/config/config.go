package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // контейнеры без системной базы часовых поясов

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Драйверы блокировок
const (
	LockDriverLocal    = "local"
	LockDriverRedis    = "redis"
	LockDriverPostgres = "postgres"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Locks     LocksConfig     `toml:"locks"`
	Events    EventsConfig    `toml:"events"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// SchedulerConfig настройки планировщика
type SchedulerConfig struct {
	// Timezone IANA-имя зоны студии; в ней считаются календарные дни и год booking code
	Timezone            string `toml:"timezone"`
	BookingCodeAttempts int    `toml:"booking_code_attempts"`
}

// LocksConfig настройки блокировок check-then-insert
type LocksConfig struct {
	Driver          string `toml:"driver"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	TTLMs           int    `toml:"ttl_ms"`
	RetryIntervalMs int    `toml:"retry_interval_ms"`
}

// EventsConfig настройки публикации событий в RabbitMQ
type EventsConfig struct {
	Enabled  bool   `toml:"enabled"`
	AMQPURL  string `toml:"amqp_url"`
	Exchange string `toml:"exchange"`

	// BufferSize размер очереди событий; при переполнении события отбрасываются
	BufferSize       int `toml:"buffer_size"`
	DialTimeoutMs    int `toml:"dial_timeout_ms"`
	PublishTimeoutMs int `toml:"publish_timeout_ms"`
}

// DialTimeout таймаут подключения к брокеру
func (c EventsConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMs) * time.Millisecond
}

// PublishTimeout таймаут публикации одного сообщения
func (c EventsConfig) PublishTimeout() time.Duration {
	return time.Duration(c.PublishTimeoutMs) * time.Millisecond
}

// RateLimitConfig ограничение частоты запросов на клиента
type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`
	Burst   int     `toml:"burst"`
}

// Load загружает конфигурацию из TOML файла.
// Перед разбором подхватывается .env (если есть), после разбора секреты переопределяются из окружения.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "studio-booking",
		},
		Scheduler: SchedulerConfig{
			Timezone:            "UTC",
			BookingCodeAttempts: 3,
		},
		Locks: LocksConfig{
			Driver:          LockDriverPostgres,
			TTLMs:           10000,
			RetryIntervalMs: 50,
		},
		Events: EventsConfig{
			Exchange:         "reservations",
			BufferSize:       1024,
			DialTimeoutMs:    2000,
			PublishTimeoutMs: 2000,
		},
		RateLimit: RateLimitConfig{
			RPS:   10,
			Burst: 20,
		},
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Locks.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Locks.RedisPassword = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		c.Events.AMQPURL = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_PORT %q: %w", v, err)
		}
		c.Server.HTTPPort = port
	}
	return nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be in 1..65535, got %d", c.Server.HTTPPort)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns must not be negative, got %d", c.Database.MaxIdleConns)
	}
	if c.Scheduler.BookingCodeAttempts < 1 {
		return fmt.Errorf("scheduler.booking_code_attempts must be at least 1, got %d", c.Scheduler.BookingCodeAttempts)
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("scheduler.timezone %q: %w", c.Scheduler.Timezone, err)
	}

	switch c.Locks.Driver {
	case LockDriverLocal, LockDriverPostgres:
	case LockDriverRedis:
		if c.Locks.RedisAddr == "" {
			return errors.New("locks.redis_addr is required for the redis driver")
		}
		if c.Locks.TTLMs <= 0 || c.Locks.RetryIntervalMs <= 0 {
			return errors.New("locks.ttl_ms and locks.retry_interval_ms must be positive")
		}
	default:
		return fmt.Errorf("unknown locks.driver %q", c.Locks.Driver)
	}

	if c.Events.Enabled && (c.Events.AMQPURL == "" || c.Events.Exchange == "") {
		return errors.New("events.amqp_url and events.exchange are required when events are enabled")
	}
	if c.Events.Enabled && (c.Events.BufferSize <= 0 || c.Events.DialTimeoutMs <= 0 || c.Events.PublishTimeoutMs <= 0) {
		return errors.New("events.buffer_size, events.dial_timeout_ms and events.publish_timeout_ms must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate_limit.rps and rate_limit.burst must be positive")
	}

	return nil
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Location часовой пояс планировщика. Вызывать после Validate.
func (s SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TTL время жизни ключа блокировки в Redis
func (l LocksConfig) TTL() time.Duration {
	return time.Duration(l.TTLMs) * time.Millisecond
}

// RetryInterval пауза между попытками взять занятый ключ
func (l LocksConfig) RetryInterval() time.Duration {
	return time.Duration(l.RetryIntervalMs) * time.Millisecond
}
