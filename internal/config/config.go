// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// Переменные окружения всегда перекрывают значения из файла.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/crypto/bcrypt"
)

// Config - корневая конфигурация сервиса. После загрузки не изменяется.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Auth     AuthConfig    `yaml:"auth"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	CORS     CORSConfig    `yaml:"cors"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig - таймаут обработки запроса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig - сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// AuthConfig содержит параметры выпуска токенов и хэширования паролей.
type AuthConfig struct {
	JWTSecret            string `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	JWTExpirationSeconds int64  `yaml:"jwt_expiration_seconds" env:"JWT_EXPIRATION_SECONDS" env-default:"3600"`
	BcryptCost           int    `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// TokenTTL возвращает время жизни токена.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.JWTExpirationSeconds) * time.Second
}

// DBConfig - настройки подключения к базе данных.
// Пустой DatabaseURL включает хранилище в памяти.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL"`
	MaxConns    int32  `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"5"`
	// SkipMigrations отключает применение миграций на старте.
	SkipMigrations bool `yaml:"skip_migrations" env:"DB_SKIP_MIGRATIONS"`

	// Первичное подключение повторяется: БД может подняться позже сервиса.
	ConnectAttempts uint64        `yaml:"connect_attempts" env:"DB_CONNECT_ATTEMPTS" env-default:"5"`
	ConnectBackoff  time.Duration `yaml:"connect_backoff" env:"DB_CONNECT_BACKOFF" env-default:"500ms"`
}

// RedisConfig - кэш профилей. Пустой RedisURL отключает кэш.
type RedisConfig struct {
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"5m"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// maxJWTExpirationSeconds - верхняя граница времени жизни токена (год).
const maxJWTExpirationSeconds = 365 * 24 * 60 * 60

var (
	ErrEmptySecret       = errors.New("auth.jwt_secret must not be empty")
	ErrInvalidExpiration = errors.New("auth.jwt_expiration_seconds out of range")
	ErrInvalidBcryptCost = errors.New("auth.bcrypt_cost out of range")
	ErrInvalidTTL        = errors.New("redis.ttl must be positive")
)

// Validate проверяет значения, которые cleanenv проверить не может.
func (c *Config) Validate() error {
	const op = "config.Validate"

	switch {
	case c.Auth.JWTSecret == "":
		return fmt.Errorf("%s: %w", op, ErrEmptySecret)
	case c.Auth.JWTExpirationSeconds <= 0 || c.Auth.JWTExpirationSeconds > maxJWTExpirationSeconds:
		return fmt.Errorf("%s: %w: %d", op, ErrInvalidExpiration, c.Auth.JWTExpirationSeconds)
	case c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost:
		return fmt.Errorf("%s: %w: %d", op, ErrInvalidBcryptCost, c.Auth.BcryptCost)
	case c.Redis.RedisURL != "" && c.Redis.TTL <= 0:
		return fmt.Errorf("%s: %w", op, ErrInvalidTTL)
	}

	return nil
}

// MustLoad - обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load читает конфигурацию и валидирует её.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func read(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		// ReadConfig уже накладывает ENV поверх файла.
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", p, err)
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
