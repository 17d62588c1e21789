package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config представляет конфигурацию приложения. Структура содержит вложенные структуры для различных компонентов приложения.
type Config struct {
	Server       ServerConfig    `json:"server" yaml:"server"`
	Database     DatabaseConfig  `json:"database" yaml:"database"`
	Redis        RedisConfig     `json:"redis" yaml:"redis"`
	Logger       LoggerConfig    `json:"logger" yaml:"logger"`
	JWT          JWTConfig       `json:"jwt" yaml:"jwt"`
	Proxy        ProxyConfig     `json:"proxy" yaml:"proxy"`
	RateLimiting RateLimitConfig `json:"rate_limiting" yaml:"rate_limiting"`
	Environment  string          `json:"environment" yaml:"environment"`
}

// ServerConfig представляет конфигурацию сервера. Содержит настройки хоста и порта для HTTP-сервера.
type ServerConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// DatabaseConfig представляет конфигурацию базы данных
type DatabaseConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Name     string `json:"name" yaml:"name"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
}

// RedisConfig представляет конфигурацию Redis
type RedisConfig struct {
	Addr        string `json:"addr" yaml:"addr"`
	Password    string `json:"password" yaml:"password"`
	DB          int    `json:"db" yaml:"db"`
	PoolSize    int    `json:"pool_size" yaml:"pool_size"`
	MinIdleConn int    `json:"min_idle_conn" yaml:"min_idle_conn"`
}

// LoggerConfig представляет конфигурацию логгера
type LoggerConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// JWTConfig представляет конфигурацию подписанных API токенов
type JWTConfig struct {
	Secret        string `json:"secret" yaml:"secret"`
	TokenDuration string `json:"token_duration" yaml:"token_duration"`
}

// ProxyConfig представляет конфигурацию проксирования
// ProbeTimeout ограничивает health check запросы к региональным endpoint'ам,
// ForwardTimeout ограничивает проксируемый запрос
type ProxyConfig struct {
	ProbeTimeout   string `json:"probe_timeout" yaml:"probe_timeout"`
	ForwardTimeout string `json:"forward_timeout" yaml:"forward_timeout"`
}

// RateLimitConfig представляет конфигурацию Rate Limiting
type RateLimitConfig struct {
	Enabled           bool `json:"enabled" yaml:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute" yaml:"requests_per_minute"`
}

// LoadConfig загружает конфигурацию в следующем порядке приоритета:
// 1. Загрузка значений по умолчанию
// 2. Загрузка из файла (если указан)
// 3. Переопределение значениями из переменных окружения
// 4. Валидация конфигурации
// Возвращает готовую конфигурацию или ошибку.
func LoadConfig(configFile string) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "geoproxy",
			User:     "geoproxy",
			Password: "geoproxy",
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			Password:    "",
			DB:          0,
			PoolSize:    10,
			MinIdleConn: 2,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		JWT: JWTConfig{
			Secret:        "your-secret-key",
			TokenDuration: "8760h", // 365 дней
		},
		Proxy: ProxyConfig{
			ProbeTimeout:   "5s",
			ForwardTimeout: "10s",
		},
		RateLimiting: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 100,
		},
		Environment: "dev",
	}

	// Load from file if specified
	if configFile != "" {
		if err := loadConfigFromFile(config, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Load from environment variables
	if err := loadConfigFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ProbeTimeoutDuration возвращает таймаут health check запроса
func (c *Config) ProbeTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Proxy.ProbeTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// ForwardTimeoutDuration возвращает таймаут проксируемого запроса
func (c *Config) ForwardTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Proxy.ForwardTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// TokenDuration возвращает срок жизни API токена
func (c *Config) TokenDuration() time.Duration {
	d, err := time.ParseDuration(c.JWT.TokenDuration)
	if err != nil {
		return 365 * 24 * time.Hour
	}
	return d
}

func loadConfigFromFile(config *Config, filename string) error {
	// Expand environment variables in the file path
	filename = os.ExpandEnv(filename)

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	// Try to unmarshal as YAML first, then JSON
	if err := yaml.Unmarshal(content, config); err != nil {
		if jsonErr := json.Unmarshal(content, config); jsonErr != nil {
			return fmt.Errorf("failed to unmarshal config file as YAML or JSON: %w", err)
		}
	}

	return nil
}

func loadConfigFromEnv(config *Config) error {
	// Server config
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &config.Server.Port); err != nil {
			return fmt.Errorf("invalid SERVER_PORT: %s", port)
		}
	}

	// Database config
	if host := os.Getenv("DATABASE_HOST"); host != "" {
		config.Database.Host = host
	}
	if port := os.Getenv("DATABASE_PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &config.Database.Port); err != nil {
			return fmt.Errorf("invalid DATABASE_PORT: %s", port)
		}
	}
	if name := os.Getenv("DATABASE_NAME"); name != "" {
		config.Database.Name = name
	}
	if user := os.Getenv("DATABASE_USER"); user != "" {
		config.Database.User = user
	}
	if password := os.Getenv("DATABASE_PASSWORD"); password != "" {
		config.Database.Password = password
	}

	// Redis config
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Redis.Password = password
	}

	// Logger config
	if level := os.Getenv("LOGGER_LEVEL"); level != "" {
		config.Logger.Level = level
	}
	if format := os.Getenv("LOGGER_FORMAT"); format != "" {
		config.Logger.Format = format
	}

	// JWT config
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.JWT.Secret = secret
	}
	if duration := os.Getenv("JWT_TOKEN_DURATION"); duration != "" {
		config.JWT.TokenDuration = duration
	}

	// Proxy config
	if timeout := os.Getenv("PROXY_PROBE_TIMEOUT"); timeout != "" {
		config.Proxy.ProbeTimeout = timeout
	}
	if timeout := os.Getenv("PROXY_FORWARD_TIMEOUT"); timeout != "" {
		config.Proxy.ForwardTimeout = timeout
	}

	// Environment
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Environment = env
	}

	return nil
}

func validateConfig(config *Config) error {
	// Проверка корректности окружения. Поддерживаются только: dev, staging, prod
	switch config.Environment {
	case "dev", "staging", "prod":
		// Valid environment
	default:
		return fmt.Errorf("invalid environment: %s, must be one of: dev, staging, prod", config.Environment)
	}

	// Валидация конфигурации сервера
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	// Валидация конфигурации базы данных
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Database.Port <= 0 || config.Database.Port > 65535 {
		return fmt.Errorf("database.port must be between 1 and 65535")
	}
	if config.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if config.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if config.Database.Password == "" {
		return fmt.Errorf("database.password is required")
	}

	// Валидация конфигурации логгера
	if config.Logger.Level == "" {
		return fmt.Errorf("logger.level is required")
	}

	// Валидация секрета подписи токенов
	if config.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if _, err := time.ParseDuration(config.JWT.TokenDuration); err != nil {
		return fmt.Errorf("jwt.token_duration is invalid: %w", err)
	}

	// Валидация таймаутов проксирования
	if _, err := time.ParseDuration(config.Proxy.ProbeTimeout); err != nil {
		return fmt.Errorf("proxy.probe_timeout is invalid: %w", err)
	}
	if _, err := time.ParseDuration(config.Proxy.ForwardTimeout); err != nil {
		return fmt.Errorf("proxy.forward_timeout is invalid: %w", err)
	}

	// Валидация rate limiting
	if config.RateLimiting.Enabled && config.RateLimiting.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate_limiting.requests_per_minute must be positive")
	}

	return nil
}
