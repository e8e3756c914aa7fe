package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Помилки сховища, нормалізовані для API та порталу
var (
	// ErrNotFound ідентифікатор (клієнт, співробітник) не існує
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateID створення запису з ідентифікатором що вже існує
	ErrDuplicateID = errors.New("identifier already exists")

	// ErrProtectedEmployee спроба змінити роль або видалити bootstrap master
	ErrProtectedEmployee = errors.New("employee record is protected")
)

// normalizeError конвертує gorm/драйверні помилки в помилки сховища
func normalizeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return ErrDuplicateID
	}
	return err
}

// isUniqueViolation перевіряє текст помилки Postgres (SQLSTATE 23505).
// Драйвер не завжди мапиться на gorm.ErrDuplicatedKey, тому тримаємо
// fallback на текстову перевірку.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "duplicate key value")
}
