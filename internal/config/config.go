package config

import (
	"fmt"
	"os"
	"time"
	// Timezone names resolve without system tzdata
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	BotToken        string        `yaml:"bot_token" envconfig:"BOT_TOKEN"`
	LongPollTimeout time.Duration `yaml:"longpoll_timeout" envconfig:"LONGPOLL_TIMEOUT"`
	Debug           bool          `yaml:"debug" envconfig:"DEBUG"`
	Timezone        string        `yaml:"timezone" envconfig:"TIMEZONE"`
	CalendarURL     string        `yaml:"calendar_url" envconfig:"CALENDAR_URL"`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	RUZ      RUZConfig      `yaml:"ruz"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// RedisConfig holds cache settings. An empty address disables redis.
type RedisConfig struct {
	Addr     string        `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string        `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" envconfig:"REDIS_DB"`
	CacheTTL time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
}

// RUZConfig holds schedule API settings
type RUZConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"RUZ_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"RUZ_TIMEOUT"`
}

func defaults() *Config {
	return &Config{
		LongPollTimeout: 10 * time.Second,
		Timezone:        "Europe/Moscow",
		CalendarURL:     "https://schedule.fa.ru/",
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			Name:           "schedulebot",
			User:           "schedulebot",
			SSLMode:        "disable",
			MaxConnections: 25,
		},
		Redis: RedisConfig{
			CacheTTL: 24 * time.Hour,
		},
		RUZ: RUZConfig{
			BaseURL: "https://ruz.fa.ru/api",
			Timeout: 10 * time.Second,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file named by
// CONFIG_FILE and environment variables, in increasing precedence
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.LongPollTimeout <= 0 {
		return fmt.Errorf("LONGPOLL_TIMEOUT must be positive")
	}
	if c.RUZ.Timeout <= 0 {
		return fmt.Errorf("RUZ_TIMEOUT must be positive")
	}
	if c.Database.MaxConnections <= 0 {
		return fmt.Errorf("DB_MAX_CONNECTIONS must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the timezone schedules are computed in
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
