package models

// AccessLog представляє запис аудиту входу клієнта в портал.
// Append-only: записується при кожному успішному логіні.
type AccessLog struct {
	BaseModel

	ClientID  string `gorm:"index;not null" json:"client_id"`
	IPAddress string `gorm:"not null" json:"ip_address"`
}

// TableName встановлює назву таблиці
func (AccessLog) TableName() string {
	return "access_logs"
}
