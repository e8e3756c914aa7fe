package models

// Notification представляє повідомлення в інбоксі клієнта.
// Список append-only: окремі повідомлення не редагуються і не
// видаляються, очищення можливе лише для всього інбоксу клієнта.
type Notification struct {
	BaseModel

	ClientID string `gorm:"index;not null" json:"client_id"`
	Message  string `gorm:"type:text;not null" json:"message"`
}

// TableName встановлює назву таблиці
func (Notification) TableName() string {
	return "notifications"
}
