// Package opsbot пересилає події панелі операторам у Telegram:
// входи клієнтів, повідомлення чату підтримки та зміни VM статусу.
package opsbot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/config"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/events"
)

// Bot операторський Telegram бот
type Bot struct {
	api         *tgbotapi.BotAPI
	redisClient *redis.Client
	opsChatID   int64
}

// NewBot створює нового операторського бота
func NewBot(cfg *config.Config, redisClient *redis.Client) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	api.Debug = cfg.Telegram.Debug
	log.Printf("✅ Authorized on Telegram account: @%s", api.Self.UserName)

	return &Bot{
		api:         api,
		redisClient: redisClient,
		opsChatID:   cfg.Telegram.OpsChatID,
	}, nil
}

// Start підписується на події панелі та пересилає їх операторам.
// Блокується до скасування контексту.
func (b *Bot) Start(ctx context.Context) error {
	eventCh, err := events.Subscribe(ctx, b.redisClient)
	if err != nil {
		return fmt.Errorf("failed to subscribe to panel events: %w", err)
	}

	log.Println("📡 Listening for panel events...")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-eventCh:
			if !ok {
				return nil
			}
			b.forward(event)
		}
	}
}

// forward форматує та відправляє подію в операторський чат
func (b *Bot) forward(event events.Event) {
	text := formatEvent(event)
	if text == "" {
		return
	}

	msg := tgbotapi.NewMessage(b.opsChatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("⚠️ Failed to forward event %s: %v", event.Type, err)
	}
}

func formatEvent(event events.Event) string {
	switch event.Type {
	case events.EventClientLogin:
		// Message поле містить IP адресу входу
		return fmt.Sprintf("🚪 Client login: %s (IP: %s)", event.ClientID, event.Message)
	case events.EventChatMessage:
		return fmt.Sprintf("💬 Support message from %s:\n%s", event.ClientID, event.Message)
	case events.EventVMStatusChanged:
		return fmt.Sprintf("🖥️ VM status for %s -> %s", event.ClientID, event.Message)
	default:
		log.Printf("⚠️ Unknown event type: %s", event.Type)
		return ""
	}
}
