package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `yaml:"app" mapstructure:"app"`
	Database    DatabaseConfig    `yaml:"database" mapstructure:"database"`
	Redis       RedisConfig       `yaml:"redis" mapstructure:"redis"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Portal      PortalConfig      `yaml:"portal" mapstructure:"portal"`
	Telegram    TelegramConfig    `yaml:"telegram" mapstructure:"telegram"`
	IPLookup    IPLookupConfig    `yaml:"ip_lookup" mapstructure:"ip_lookup"`
	Maintenance MaintenanceConfig `yaml:"maintenance" mapstructure:"maintenance"`
}

type AppConfig struct {
	Environment string `yaml:"environment" mapstructure:"environment"`
	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     string `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"db_name" mapstructure:"db_name"`
	SSLMode  string `yaml:"ssl_mode" mapstructure:"ssl_mode"`
	MaxConns int    `yaml:"max_conns" mapstructure:"max_conns"`
}

type RedisConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     string `yaml:"port" mapstructure:"port"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

type ServerConfig struct {
	Host           string   `yaml:"host" mapstructure:"host"`
	Port           int      `yaml:"port" mapstructure:"port"`
	JWTSecret      string   `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimit      int      `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per minute
}

// PortalConfig налаштування клієнтського ядра порталу (polling, сесії)
type PortalConfig struct {
	APIBaseURL string `yaml:"api_base_url" mapstructure:"api_base_url"`
	StateDir   string `yaml:"state_dir" mapstructure:"state_dir"` // тека для remembered сесій

	// Інтервали опитування, секунди. Кожна сутність має фіксований
	// інтервал; UI стає pseudo-real-time через polling, не push.
	ClientPollSeconds       int `yaml:"client_poll_seconds" mapstructure:"client_poll_seconds"`
	ChatPollSeconds         int `yaml:"chat_poll_seconds" mapstructure:"chat_poll_seconds"`
	NotificationPollSeconds int `yaml:"notification_poll_seconds" mapstructure:"notification_poll_seconds"`
	AnnouncementPollSeconds int `yaml:"announcement_poll_seconds" mapstructure:"announcement_poll_seconds"`
	StatusPollSeconds       int `yaml:"status_poll_seconds" mapstructure:"status_poll_seconds"`
}

// TelegramConfig налаштування операторського бота (опціонально)
type TelegramConfig struct {
	BotToken  string `yaml:"bot_token" mapstructure:"bot_token"`
	OpsChatID int64  `yaml:"ops_chat_id" mapstructure:"ops_chat_id"`
	Debug     bool   `yaml:"debug" mapstructure:"debug"`
}

// IPLookupConfig зовнішній сервіс визначення публічної IP адреси
type IPLookupConfig struct {
	Endpoint       string `yaml:"endpoint" mapstructure:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// MaintenanceConfig налаштування планових задач
type MaintenanceConfig struct {
	AccessLogRetentionDays    int    `yaml:"access_log_retention_days" mapstructure:"access_log_retention_days"`
	NotificationRetentionDays int    `yaml:"notification_retention_days" mapstructure:"notification_retention_days"`
	PlanExpiryWarnDays        int    `yaml:"plan_expiry_warn_days" mapstructure:"plan_expiry_warn_days"`
	Schedule                  string `yaml:"schedule" mapstructure:"schedule"` // cron spec
}

func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Секрети завжди можна перекрити через env
	config.Database.User = getEnv("DB_USER", config.Database.User)
	config.Database.Password = getEnv("DB_PASSWORD", config.Database.Password)
	config.Database.DBName = getEnv("DB_NAME", config.Database.DBName)
	config.Database.Port = getEnv("DB_PORT", config.Database.Port)
	config.Redis.Password = getEnv("REDIS_PASSWORD", config.Redis.Password)
	config.Server.JWTSecret = getEnv("JWT_SECRET", config.Server.JWTSecret)
	config.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", config.Telegram.BotToken)

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_conns", 25)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.rate_limit", 120)
	viper.SetDefault("portal.api_base_url", "http://localhost:8080")
	viper.SetDefault("portal.client_poll_seconds", 10)
	viper.SetDefault("portal.chat_poll_seconds", 5)
	viper.SetDefault("portal.notification_poll_seconds", 15)
	viper.SetDefault("portal.announcement_poll_seconds", 30)
	viper.SetDefault("portal.status_poll_seconds", 10)
	viper.SetDefault("ip_lookup.endpoint", "https://api.ipify.org?format=json")
	viper.SetDefault("ip_lookup.timeout_seconds", 5)
	viper.SetDefault("maintenance.access_log_retention_days", 90)
	viper.SetDefault("maintenance.notification_retention_days", 90)
	viper.SetDefault("maintenance.plan_expiry_warn_days", 7)
	viper.SetDefault("maintenance.schedule", "0 2 * * *") // щодня о 2:00
}

func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}

	if c.Database.Port == "" {
		return fmt.Errorf("database.port is required")
	}

	if c.Database.DBName == "" {
		return fmt.Errorf("database.db_name is required")
	}

	if c.Server.JWTSecret == "" {
		return fmt.Errorf("server.jwt_secret is required")
	}

	// Redis обов'язковий лише для production (events для ops бота).
	// Для development панель працює і без нього.
	if c.App.Environment == "production" {
		if c.Redis.Host == "" {
			return fmt.Errorf("redis.host is required for production")
		}

		if c.Redis.Port == "" {
			return fmt.Errorf("redis.port is required for production")
		}
	}

	return nil
}

// SafeString повертає конфігурацію без секретів для логів
func (c *Config) SafeString() string {
	return fmt.Sprintf(`Config:
		Environment: %s
		Log Level: %s

		Server:
			Listen: %s:%d
			JWT Secret: %s
			Rate Limit: %d req/min
			Origins: %v

		Database:
			Host: %s:%s
			User: %s
			Database: %s
			SSL Mode: %s
			Max Connections: %d

		Redis:
			Host: %s:%s
			Database: %d

		Portal:
			API Base URL: %s
			Poll (client/chat/notif/announce/status): %d/%d/%d/%d/%d s

		Telegram:
			Bot Token: %s
			Ops Chat: %d

		Maintenance:
			Access Log Retention: %d days
			Notification Retention: %d days
			Plan Expiry Warn: %d days
			Schedule: %s
		`,
		c.App.Environment,
		c.App.LogLevel,
		c.Server.Host,
		c.Server.Port,
		maskSecret(c.Server.JWTSecret),
		c.Server.RateLimit,
		c.Server.AllowedOrigins,
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.DBName,
		c.Database.SSLMode,
		c.Database.MaxConns,
		c.Redis.Host,
		c.Redis.Port,
		c.Redis.DB,
		c.Portal.APIBaseURL,
		c.Portal.ClientPollSeconds,
		c.Portal.ChatPollSeconds,
		c.Portal.NotificationPollSeconds,
		c.Portal.AnnouncementPollSeconds,
		c.Portal.StatusPollSeconds,
		maskSecret(c.Telegram.BotToken),
		c.Telegram.OpsChatID,
		c.Maintenance.AccessLogRetentionDays,
		c.Maintenance.NotificationRetentionDays,
		c.Maintenance.PlanExpiryWarnDays,
		c.Maintenance.Schedule,
	)
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	return value
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}

	if len(s) <= 8 {
		return "****"
	}

	return s[:4] + "..." + s[len(s)-4:]
}
