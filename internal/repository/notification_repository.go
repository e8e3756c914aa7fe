package repository

import (
	"gorm.io/gorm"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// NotificationRepository інтерфейс для інбоксу повідомлень клієнта
type NotificationRepository interface {
	Add(clientID, message string) error
	ListByClient(clientID string) ([]*models.Notification, error)
	HasMessage(clientID, message string) (bool, error)
	ClearByClient(clientID string) error
	DeleteOlderThanDays(days int) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository створює новий NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Add додає повідомлення в інбокс клієнта
func (r *notificationRepository) Add(clientID, message string) error {
	notification := &models.Notification{
		ClientID: clientID,
		Message:  message,
	}
	return normalizeError(r.db.Create(notification).Error)
}

// ListByClient повертає інбокс клієнта в порядку додавання
func (r *notificationRepository) ListByClient(clientID string) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.Where("client_id = ?", clientID).
		Order("created_at ASC").
		Find(&notifications).Error
	if err != nil {
		return nil, normalizeError(err)
	}
	return notifications, nil
}

// HasMessage перевіряє чи повідомлення з таким текстом вже є в
// інбоксі клієнта (дедуплікація планових попереджень)
func (r *notificationRepository) HasMessage(clientID, message string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("client_id = ? AND message = ?", clientID, message).
		Count(&count).Error
	if err != nil {
		return false, normalizeError(err)
	}
	return count > 0, nil
}

// ClearByClient очищає весь інбокс клієнта
func (r *notificationRepository) ClearByClient(clientID string) error {
	return normalizeError(r.db.Where("client_id = ?", clientID).
		Delete(&models.Notification{}).Error)
}

// DeleteOlderThanDays видаляє повідомлення старші за вказану кількість днів
func (r *notificationRepository) DeleteOlderThanDays(days int) (int64, error) {
	result := r.db.
		Where("created_at < NOW() - ?::interval", intervalDays(days)).
		Delete(&models.Notification{})
	return result.RowsAffected, normalizeError(result.Error)
}
