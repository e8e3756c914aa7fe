package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// EmployeeRole представляє роль співробітника
type EmployeeRole string

const (
	EmployeeRoleMaster   EmployeeRole = "master"   // Повний доступ: CRUD клієнтів та співробітників
	EmployeeRoleEmployee EmployeeRole = "employee" // Перегляд панелі без мутацій
)

// IsValid перевіряє чи роль одна з дозволених
func (r EmployeeRole) IsValid() bool {
	return r == EmployeeRoleMaster || r == EmployeeRoleEmployee
}

// Employee представляє співробітника адмін-панелі.
// IsProtected позначає bootstrap master акаунт: його роль не можна
// змінити і його не можна видалити.
type Employee struct {
	BaseModel

	EmployeeID   string       `gorm:"uniqueIndex;not null" json:"employee_id"`
	Nome         string       `gorm:"not null" json:"nome"`
	PasswordHash string       `gorm:"not null" json:"-"` // Не включаємо в JSON
	Role         EmployeeRole `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	IsProtected  bool         `gorm:"default:false" json:"is_protected"`
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
}

// TableName встановлює назву таблиці
func (Employee) TableName() string {
	return "employees"
}

// SetPassword хешує пароль і зберігає його
func (e *Employee) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	e.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword перевіряє чи пароль правильний
func (e *Employee) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password))
	return err == nil
}

// IsMaster перевіряє чи співробітник має master права
func (e *Employee) IsMaster() bool {
	return e.Role == EmployeeRoleMaster
}
