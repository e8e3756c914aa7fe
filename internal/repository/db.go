package repository

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/config"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// BuildDSN збирає Postgres DSN з конфігурації
func BuildDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode,
	)
}

// InitDatabase відкриває з'єднання з базою та налаштовує пул
func InitDatabase(cfg config.DatabaseConfig, app config.AppConfig) (*gorm.DB, error) {
	dsn := BuildDSN(&cfg)

	var logLevel logger.LogLevel
	if app.Environment == "development" {
		logLevel = logger.Info
	} else {
		logLevel = logger.Error
	}

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true, // unique violations -> gorm.ErrDuplicatedKey
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, err
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingErr := sqlDB.Ping()
	if pingErr != nil {
		return nil, pingErr
	}

	return db, nil
}

// AutoMigrate виконує міграцію всіх таблиць панелі
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ClientRecord{},
		&models.Employee{},
		&models.Notification{},
		&models.ChatMessage{},
		&models.AccessLog{},
		&models.Setting{},
	)
}

// CloseDatabase закриває з'єднання з базою
func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
