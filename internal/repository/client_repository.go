package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// ClientRepository інтерфейс для роботи з записами клієнтів
type ClientRepository interface {
	Create(record *models.ClientRecord) error
	Update(record *models.ClientRecord) error
	UpdateVMStatus(idLuid string, status models.VMStatus) error
	GetByIDLuid(idLuid string) (*models.ClientRecord, error)
	List() ([]*models.ClientRecord, error)
	ListExpiringWithin(days int) ([]*models.ClientRecord, error)
	Delete(idLuid string) error
	CountAll() (int64, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository створює новий ClientRepository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

// Create створює нового клієнта. Унікальність id_luid гарантує база;
// конфлікт повертається як ErrDuplicateID, попередній запис не чіпається.
func (r *clientRepository) Create(record *models.ClientRecord) error {
	record.ApplyDefaults()
	return normalizeError(r.db.Create(record).Error)
}

// Update оновлює всі атрибути клієнта
func (r *clientRepository) Update(record *models.ClientRecord) error {
	record.ApplyDefaults()
	result := r.db.Model(&models.ClientRecord{}).
		Where("id_luid = ?", record.IDLuid).
		Updates(map[string]interface{}{
			"nome":             record.Nome,
			"senha_cliente":    record.SenhaCliente,
			"ip_vps":           record.IPVps,
			"user_vps":         record.UserVps,
			"senha_vps":        record.SenhaVps,
			"plano":            record.Plano,
			"vm_status":        record.VMStatus,
			"operating_system": record.OperatingSystem,
			"plan_expiry":      record.PlanExpiry,
		})
	if result.Error != nil {
		return normalizeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateVMStatus частково оновлює лише VM статус
func (r *clientRepository) UpdateVMStatus(idLuid string, status models.VMStatus) error {
	result := r.db.Model(&models.ClientRecord{}).
		Where("id_luid = ?", idLuid).
		Update("vm_status", status)
	if result.Error != nil {
		return normalizeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByIDLuid отримує клієнта за id_luid
func (r *clientRepository) GetByIDLuid(idLuid string) (*models.ClientRecord, error) {
	var record models.ClientRecord
	err := r.db.Where("id_luid = ?", idLuid).First(&record).Error
	if err != nil {
		return nil, normalizeError(err)
	}
	return &record, nil
}

// List повертає всіх клієнтів впорядкованих за створенням
func (r *clientRepository) List() ([]*models.ClientRecord, error) {
	var records []*models.ClientRecord
	err := r.db.Order("created_at ASC").Find(&records).Error
	if err != nil {
		return nil, normalizeError(err)
	}
	return records, nil
}

// ListExpiringWithin повертає клієнтів чий план закінчується
// протягом вказаної кількості днів (включно з уже простроченими)
func (r *clientRepository) ListExpiringWithin(days int) ([]*models.ClientRecord, error) {
	var records []*models.ClientRecord
	err := r.db.
		Where("plan_expiry IS NOT NULL AND plan_expiry <= NOW() + ?::interval", intervalDays(days)).
		Find(&records).Error
	if err != nil {
		return nil, normalizeError(err)
	}
	return records, nil
}

// Delete видаляє клієнта остаточно. Видалення незворотне.
func (r *clientRepository) Delete(idLuid string) error {
	result := r.db.Where("id_luid = ?", idLuid).Delete(&models.ClientRecord{})
	if result.Error != nil {
		return normalizeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountAll підраховує загальну кількість клієнтів
func (r *clientRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.ClientRecord{}).Count(&count).Error
	return count, normalizeError(err)
}

func intervalDays(days int) string {
	// Формат Postgres interval, напр. "7 days"
	if days < 0 {
		days = 0
	}
	return fmt.Sprintf("%d days", days)
}
