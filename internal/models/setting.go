package models

import "time"

// Ключі глобальних налаштувань панелі
const (
	SettingGlobalAnnouncement      = "global_announcement"
	SettingChatSystemStatus        = "chat_system_status"
	SettingNetworkMonitoringStatus = "network_monitoring_status"
)

// ChatSystemStatus представляє доступність чату підтримки
type ChatSystemStatus string

const (
	ChatSystemOnline  ChatSystemStatus = "online"
	ChatSystemOffline ChatSystemStatus = "offline"
)

// Setting представляє один глобальний key/value запис.
// Відсутність global announcement кодується порожнім рядком.
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName встановлює назву таблиці
func (Setting) TableName() string {
	return "settings"
}
