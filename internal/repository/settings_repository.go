package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// SettingsRepository інтерфейс для глобальних налаштувань панелі
type SettingsRepository interface {
	GlobalAnnouncement() (string, error)
	SetGlobalAnnouncement(announcement string) error
	ClearGlobalAnnouncement() error
	ChatSystemStatus() (models.ChatSystemStatus, error)
	SetChatSystemStatus(status models.ChatSystemStatus) error
	NetworkMonitoringStatus() (string, error)
	SetNetworkMonitoringStatus(status string) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository створює новий SettingsRepository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// get повертає значення ключа або fallback якщо ключ ще не записаний
func (r *settingsRepository) get(key, fallback string) (string, error) {
	var setting models.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fallback, nil
		}
		return "", normalizeError(err)
	}
	return setting.Value, nil
}

// set записує значення ключа (upsert)
func (r *settingsRepository) set(key, value string) error {
	setting := &models.Setting{Key: key, Value: value}
	return normalizeError(r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error)
}

// GlobalAnnouncement повертає поточний глобальний анонс.
// Порожній рядок означає що анонсу немає.
func (r *settingsRepository) GlobalAnnouncement() (string, error) {
	return r.get(models.SettingGlobalAnnouncement, "")
}

// SetGlobalAnnouncement встановлює глобальний анонс для всіх клієнтів
func (r *settingsRepository) SetGlobalAnnouncement(announcement string) error {
	return r.set(models.SettingGlobalAnnouncement, announcement)
}

// ClearGlobalAnnouncement прибирає глобальний анонс
func (r *settingsRepository) ClearGlobalAnnouncement() error {
	return r.set(models.SettingGlobalAnnouncement, "")
}

// ChatSystemStatus повертає доступність чату підтримки (default online)
func (r *settingsRepository) ChatSystemStatus() (models.ChatSystemStatus, error) {
	value, err := r.get(models.SettingChatSystemStatus, string(models.ChatSystemOnline))
	if err != nil {
		return "", err
	}
	if value == string(models.ChatSystemOffline) {
		return models.ChatSystemOffline, nil
	}
	return models.ChatSystemOnline, nil
}

// SetChatSystemStatus вмикає або вимикає чат підтримки
func (r *settingsRepository) SetChatSystemStatus(status models.ChatSystemStatus) error {
	return r.set(models.SettingChatSystemStatus, string(status))
}

// NetworkMonitoringStatus повертає прапорець мережевого моніторингу (default "on")
func (r *settingsRepository) NetworkMonitoringStatus() (string, error) {
	return r.get(models.SettingNetworkMonitoringStatus, "on")
}

// SetNetworkMonitoringStatus оновлює прапорець мережевого моніторингу
func (r *settingsRepository) SetNetworkMonitoringStatus(status string) error {
	return r.set(models.SettingNetworkMonitoringStatus, status)
}
