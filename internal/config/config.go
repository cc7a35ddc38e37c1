package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config содержит все конфигурационные параметры приложения
type Config struct {
	Telegram  TelegramConfig
	AI        AIConfig
	Database  DatabaseConfig
	Scheduler SchedulerConfig
	App       AppConfig
}

// TelegramConfig содержит настройки Telegram бота
type TelegramConfig struct {
	BotToken    string
	WebhookHost string
	WebhookPath string
}

// AIConfig содержит настройки AI провайдеров
type AIConfig struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
	DeepSeek    DeepSeekConfig
	OpenRouter  OpenRouterConfig
}

type DeepSeekConfig struct {
	APIKey  string
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey   string
	BaseURL  string
	SiteURL  string
	SiteName string
}

type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SchedulerConfig задает окно ежедневной рассылки
type SchedulerConfig struct {
	StartHour int
	EndHour   int
	Timezone  string
}

type AppConfig struct {
	Env      string
	LogLevel string
	Port     int
}

// Load загружает конфигурацию из переменных окружения и .env
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Telegram
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Telegram.WebhookHost = strings.TrimRight(os.Getenv("TELEGRAM_WEBHOOK_HOST"), "/")
	cfg.Telegram.WebhookPath = os.Getenv("TELEGRAM_WEBHOOK_PATH")

	// AI
	cfg.AI.Provider = getEnvDefault("AI_PROVIDER", "openrouter")
	cfg.AI.Model = getEnvDefault("AI_MODEL", defaultModel(cfg.AI.Provider))
	cfg.AI.MaxTokens = getEnvIntDefault("AI_MAX_TOKENS", 0)
	cfg.AI.Temperature = getEnvFloatDefault("AI_TEMPERATURE", 0)
	cfg.AI.DeepSeek.APIKey = os.Getenv("DEEPSEEK_API_KEY")
	cfg.AI.DeepSeek.BaseURL = getEnvDefault("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1")
	cfg.AI.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.AI.OpenRouter.BaseURL = getEnvDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	cfg.AI.OpenRouter.SiteURL = os.Getenv("OPENROUTER_SITE_URL")
	cfg.AI.OpenRouter.SiteName = getEnvDefault("OPENROUTER_SITE_NAME", "English Practice Bot")

	// Database
	cfg.Database.Driver = getEnvDefault("DB_DRIVER", DriverSQLite)
	cfg.Database.Path = getEnvDefault("DB_PATH", "englishbot.db")
	cfg.Database.Host = getEnvDefault("DB_HOST", "localhost")
	cfg.Database.Port = getEnvIntDefault("DB_PORT", 5432)
	cfg.Database.User = os.Getenv("DB_USER")
	cfg.Database.Password = os.Getenv("DB_PASSWORD")
	cfg.Database.Name = os.Getenv("DB_NAME")
	cfg.Database.SSLMode = getEnvDefault("DB_SSL_MODE", "disable")

	// Scheduler
	cfg.Scheduler.StartHour = getEnvIntDefault("SCHEDULE_START_HOUR", 10)
	cfg.Scheduler.EndHour = getEnvIntDefault("SCHEDULE_END_HOUR", 20)
	cfg.Scheduler.Timezone = os.Getenv("SCHEDULE_TIMEZONE")

	// App
	cfg.App.Env = getEnvDefault("APP_ENV", "development")
	cfg.App.LogLevel = getEnvDefault("LOG_LEVEL", "info")
	cfg.App.Port = getEnvIntDefault("APP_PORT", 8080)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return cfg, nil
}

// defaultModel возвращает модель по умолчанию для провайдера
func defaultModel(provider string) string {
	if provider == "deepseek" {
		return "deepseek-chat"
	}
	return "openai/gpt-3.5-turbo"
}

func getEnvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	if config.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN не установлен")
	}
	if config.AI.Provider == "deepseek" && config.AI.DeepSeek.APIKey == "" {
		return fmt.Errorf("DEEPSEEK_API_KEY не установлен")
	}
	if config.AI.Provider == "openrouter" && config.AI.OpenRouter.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY не установлен")
	}
	if config.AI.Provider != "deepseek" && config.AI.Provider != "openrouter" {
		return fmt.Errorf("поддерживаются только AI_PROVIDER: deepseek, openrouter")
	}

	switch config.Database.Driver {
	case DriverSQLite:
		if config.Database.Path == "" {
			return fmt.Errorf("DB_PATH не установлен")
		}
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("DB_HOST не установлен")
		}
		if config.Database.User == "" {
			return fmt.Errorf("DB_USER не установлен")
		}
		if config.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD не установлен")
		}
		if config.Database.Name == "" {
			return fmt.Errorf("DB_NAME не установлен")
		}
	default:
		return fmt.Errorf("поддерживаются только DB_DRIVER: %s, %s", DriverSQLite, DriverPostgres)
	}

	s := config.Scheduler
	if s.StartHour < 0 || s.EndHour > 23 || s.StartHour > s.EndHour {
		return fmt.Errorf("некорректное окно рассылки: %d-%d", s.StartHour, s.EndHour)
	}
	if _, err := s.Location(); err != nil {
		return fmt.Errorf("некорректный SCHEDULE_TIMEZONE: %w", err)
	}

	return nil
}

// GetDSN возвращает строку подключения к базе данных
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetURL возвращает строку подключения в формате URL (для goose/lib/pq)
func (c *DatabaseConfig) GetURL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// GetSQLiteDSN возвращает строку подключения к файлу SQLite
func (c *DatabaseConfig) GetSQLiteDSN() string {
	return c.Path + "?_journal=WAL&_timeout=5000"
}

// Location возвращает часовой пояс рассылки, по умолчанию локальный
func (c *SchedulerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// WebhookEnabled сообщает, работает ли бот через webhook вместо long polling
func (c *TelegramConfig) WebhookEnabled() bool {
	return c.WebhookHost != ""
}

// GetWebhookPath возвращает путь webhook'а; по умолчанию путь содержит токен бота
func (c *TelegramConfig) GetWebhookPath() string {
	if c.WebhookPath != "" {
		return "/" + strings.TrimLeft(c.WebhookPath, "/")
	}
	return "/webhook/" + c.BotToken
}

// GetWebhookURL возвращает публичный адрес webhook'а
func (c *TelegramConfig) GetWebhookURL() string {
	return c.WebhookHost + c.GetWebhookPath()
}

// IsDevelopment проверяет, запущено ли приложение в режиме разработки
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction проверяет, запущено ли приложение в продакшн режиме
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// LoggerConfig возвращает конфигурацию zap для текущего окружения:
// в production JSON, в остальных окружениях консольный вывод
func (c *AppConfig) LoggerConfig() zap.Config {
	config := zap.NewDevelopmentConfig()
	if c.IsProduction() {
		config = zap.NewProductionConfig()
	}
	config.Development = c.IsDevelopment()
	config.Level = c.GetLogLevel()
	config.OutputPaths = []string{"stdout", "logs/app.log"}
	config.ErrorOutputPaths = []string{"stderr", "logs/error.log"}
	return config
}

// GetLogLevel возвращает уровень логирования в формате zap
func (c *AppConfig) GetLogLevel() zap.AtomicLevel {
	switch c.LogLevel {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}
