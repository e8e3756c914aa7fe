package models

import "time"

// BaseModel спільні поля для всіх моделей панелі.
// Видалення записів у панелі завжди остаточне (hard delete),
// тому soft-delete поля тут немає.
type BaseModel struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
