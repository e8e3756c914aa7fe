package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// EmployeeRepository інтерфейс для роботи зі співробітниками
type EmployeeRepository interface {
	Create(employee *models.Employee) error
	Update(employee *models.Employee) error
	GetByEmployeeID(employeeID string) (*models.Employee, error)
	List() ([]*models.Employee, error)
	Delete(employeeID string) error
	CountAll() (int64, error)
	UpdateLastLogin(employeeID string) error
}

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository створює новий EmployeeRepository
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// Create створює нового співробітника
func (r *employeeRepository) Create(employee *models.Employee) error {
	return normalizeError(r.db.Create(employee).Error)
}

// Update оновлює співробітника. Зміна ролі захищеного (bootstrap master)
// акаунта відхиляється на рівні сховища, не лише в UI.
func (r *employeeRepository) Update(employee *models.Employee) error {
	existing, err := r.GetByEmployeeID(employee.EmployeeID)
	if err != nil {
		return err
	}

	if existing.IsProtected && employee.Role != existing.Role {
		return ErrProtectedEmployee
	}

	updates := map[string]interface{}{
		"nome": employee.Nome,
		"role": employee.Role,
	}
	if employee.PasswordHash != "" {
		updates["password_hash"] = employee.PasswordHash
	}

	return normalizeError(r.db.Model(&models.Employee{}).
		Where("employee_id = ?", employee.EmployeeID).
		Updates(updates).Error)
}

// GetByEmployeeID отримує співробітника за employee_id
func (r *employeeRepository) GetByEmployeeID(employeeID string) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.Where("employee_id = ?", employeeID).First(&employee).Error
	if err != nil {
		return nil, normalizeError(err)
	}
	return &employee, nil
}

// List повертає всіх співробітників
func (r *employeeRepository) List() ([]*models.Employee, error) {
	var employees []*models.Employee
	err := r.db.Order("created_at ASC").Find(&employees).Error
	if err != nil {
		return nil, normalizeError(err)
	}
	return employees, nil
}

// Delete видаляє співробітника. Захищений акаунт видалити не можна.
func (r *employeeRepository) Delete(employeeID string) error {
	existing, err := r.GetByEmployeeID(employeeID)
	if err != nil {
		return err
	}
	if existing.IsProtected {
		return ErrProtectedEmployee
	}

	return normalizeError(r.db.Where("employee_id = ?", employeeID).
		Delete(&models.Employee{}).Error)
}

// CountAll підраховує загальну кількість співробітників
func (r *employeeRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.Employee{}).Count(&count).Error
	return count, normalizeError(err)
}

// UpdateLastLogin оновлює час останнього входу
func (r *employeeRepository) UpdateLastLogin(employeeID string) error {
	now := time.Now()
	return normalizeError(r.db.Model(&models.Employee{}).
		Where("employee_id = ?", employeeID).
		Update("last_login_at", now).Error)
}

// CreateBootstrapMaster створює захищений master акаунт при першому
// запуску. Якщо акаунт вже існує, нічого не робить.
func CreateBootstrapMaster(db *gorm.DB, employeeID, password, nome string) error {
	repo := NewEmployeeRepository(db)

	existing, _ := repo.GetByEmployeeID(employeeID)
	if existing != nil {
		return nil
	}

	master := &models.Employee{
		EmployeeID:  employeeID,
		Nome:        nome,
		Role:        models.EmployeeRoleMaster,
		IsProtected: true,
	}

	if err := master.SetPassword(password); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return repo.Create(master)
}
