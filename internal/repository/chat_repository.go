package repository

import (
	"gorm.io/gorm"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// ChatRepository інтерфейс для транскрипту чату підтримки
type ChatRepository interface {
	Append(message *models.ChatMessage) error
	Conversation(clientID string) ([]*models.ChatMessage, error)
	ClearConversation(clientID string) error
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository створює новий ChatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// Append додає повідомлення в розмову. Підтвердження доставки немає,
// успіх виклику і є доставка.
func (r *chatRepository) Append(message *models.ChatMessage) error {
	return normalizeError(r.db.Create(message).Error)
}

// Conversation повертає транскрипт розмови в порядку вставки
func (r *chatRepository) Conversation(clientID string) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	err := r.db.Where("client_id = ?", clientID).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, normalizeError(err)
	}
	return messages, nil
}

// ClearConversation очищає всю розмову клієнта
func (r *chatRepository) ClearConversation(clientID string) error {
	return normalizeError(r.db.Where("client_id = ?", clientID).
		Delete(&models.ChatMessage{}).Error)
}
