package models

// OperatorIdentity зарезервований sender/receiver токен що позначає
// єдиний операторський канал підтримки. Маршрутизації між декількома
// операторами немає.
const OperatorIdentity = "admin"

// ChatMessage представляє одне повідомлення в чаті підтримки.
// Розмова ідентифікується client_id; повідомлення впорядковані за
// вставкою, редагування немає, лише bulk-clear всієї розмови.
type ChatMessage struct {
	BaseModel

	ClientID string `gorm:"index;not null" json:"client_id"`
	Sender   string `gorm:"not null" json:"sender"`
	Receiver string `gorm:"not null" json:"receiver"`
	Message  string `gorm:"type:text;not null" json:"message"`
}

// TableName встановлює назву таблиці
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// FromOperator перевіряє чи повідомлення відправлене оператором
func (m *ChatMessage) FromOperator() bool {
	return m.Sender == OperatorIdentity
}
