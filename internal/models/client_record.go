package models

import "time"

// VMStatus представляє стан VPS машини клієнта
type VMStatus string

const (
	VMStatusOnline      VMStatus = "online"
	VMStatusOffline     VMStatus = "offline"
	VMStatusMaintenance VMStatus = "maintenance"
)

// IsValid перевіряє чи статус один з дозволених
func (s VMStatus) IsValid() bool {
	return s == VMStatusOnline || s == VMStatusOffline || s == VMStatusMaintenance
}

// OperatingSystem представляє ОС встановлену на VPS
type OperatingSystem string

const (
	OSWindows OperatingSystem = "windows"
	OSUbuntu  OperatingSystem = "ubuntu"
)

// IsValid перевіряє чи ОС одна з підтримуваних
func (o OperatingSystem) IsValid() bool {
	return o == OSWindows || o == OSUbuntu
}

// ClientRecord представляє клієнта хостингу разом з його VPS доступами.
// Поля senha_cliente / senha_vps зберігаються у відкритому вигляді:
// портал показує клієнту його VPS credentials, тому їх не можна хешувати.
type ClientRecord struct {
	BaseModel

	IDLuid          string          `gorm:"uniqueIndex;not null" json:"id_luid"`
	Nome            string          `gorm:"not null" json:"nome"`
	SenhaCliente    string          `gorm:"not null" json:"senha_cliente"`
	IPVps           string          `json:"ip_vps"`
	UserVps         string          `json:"user_vps"`
	SenhaVps        string          `json:"senha_vps"`
	Plano           string          `json:"plano"`
	VMStatus        VMStatus        `gorm:"type:varchar(20);not null;default:'online'" json:"vm_status"`
	OperatingSystem OperatingSystem `gorm:"type:varchar(20);not null;default:'ubuntu'" json:"operating_system"`
	PlanExpiry      *time.Time      `gorm:"index" json:"plan_expiry,omitempty"`
}

// TableName встановлює назву таблиці
func (ClientRecord) TableName() string {
	return "client_records"
}

// ApplyDefaults заповнює опціональні поля значеннями за замовчуванням.
// Схема запису росла з часом (vm_status, operating_system, plan_expiry),
// тому старі виклики можуть не передавати нові поля.
func (c *ClientRecord) ApplyDefaults() {
	if c.VMStatus == "" {
		c.VMStatus = VMStatusOnline
	}
	if c.OperatingSystem == "" {
		c.OperatingSystem = OSUbuntu
	}
}

// CheckPortalPassword перевіряє пароль клієнтського порталу.
// Порівняння plaintext — збережено для сумісності з оригінальною
// схемою записів (пароль також видимий адміністратору в панелі).
func (c *ClientRecord) CheckPortalPassword(password string) bool {
	return c.SenhaCliente == password
}

// PlanExpired перевіряє чи термін дії плану вже минув
func (c *ClientRecord) PlanExpired() bool {
	if c.PlanExpiry == nil {
		return false
	}
	return time.Now().After(*c.PlanExpiry)
}

// PlanExpiresWithin перевіряє чи план закінчується протягом вказаного вікна
func (c *ClientRecord) PlanExpiresWithin(window time.Duration) bool {
	if c.PlanExpiry == nil || c.PlanExpired() {
		return false
	}
	return time.Until(*c.PlanExpiry) <= window
}
