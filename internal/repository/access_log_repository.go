package repository

import (
	"gorm.io/gorm"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// AccessLogRepository інтерфейс для аудиту входів клієнтів
type AccessLogRepository interface {
	Append(clientID, ipAddress string) error
	List(limit, offset int) ([]*models.AccessLog, error)
	ListByClient(clientID string) ([]*models.AccessLog, error)
	DeleteOlderThanDays(days int) (int64, error)
}

type accessLogRepository struct {
	db *gorm.DB
}

// NewAccessLogRepository створює новий AccessLogRepository
func NewAccessLogRepository(db *gorm.DB) AccessLogRepository {
	return &accessLogRepository{db: db}
}

// Append записує успішний вхід клієнта
func (r *accessLogRepository) Append(clientID, ipAddress string) error {
	entry := &models.AccessLog{
		ClientID:  clientID,
		IPAddress: ipAddress,
	}
	return normalizeError(r.db.Create(entry).Error)
}

// List повертає записи аудиту з пагінацією, найновіші першими
func (r *accessLogRepository) List(limit, offset int) ([]*models.AccessLog, error) {
	var logs []*models.AccessLog
	err := r.db.Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, normalizeError(err)
	}
	return logs, nil
}

// ListByClient повертає історію входів одного клієнта
func (r *accessLogRepository) ListByClient(clientID string) ([]*models.AccessLog, error) {
	var logs []*models.AccessLog
	err := r.db.Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, normalizeError(err)
	}
	return logs, nil
}

// DeleteOlderThanDays видаляє записи аудиту старші за вказану кількість днів
func (r *accessLogRepository) DeleteOlderThanDays(days int) (int64, error) {
	result := r.db.
		Where("created_at < NOW() - ?::interval", intervalDays(days)).
		Delete(&models.AccessLog{})
	return result.RowsAffected, normalizeError(result.Error)
}
