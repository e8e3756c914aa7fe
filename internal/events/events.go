// Package events провайдить pub/sub канал між процесом панелі та
// операторським ботом через Redis. Панель публікує події, opsbot
// підписується і пересилає їх операторам.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/config"
)

// Channel канал Redis для подій панелі
const Channel = "panel:events"

// Event types
const (
	EventClientLogin     = "client_login"
	EventChatMessage     = "chat_message"
	EventVMStatusChanged = "vm_status_changed"
)

// Event представляє одну подію панелі
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ClientID  string    `json:"client_id,omitempty"`
	Sender    string    `json:"sender,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRedisClient створює новий Redis client. Redis опціональний:
// якщо host не налаштований, повертається nil без помилки.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// CloseRedisClient закриває з'єднання з Redis
func CloseRedisClient(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// Publisher публікує події панелі. Nil redis client деградує в no-op:
// панель повністю працює без Redis, лише без операторських алертів.
type Publisher struct {
	redis *redis.Client
}

// NewPublisher створює новий Publisher
func NewPublisher(redisClient *redis.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

// Publish публікує подію. Помилки лише логуються: доставка алертів
// ніколи не блокує і не фейлить операцію панелі.
func (p *Publisher) Publish(eventType, clientID, sender, message string) {
	if p == nil || p.redis == nil {
		return
	}

	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ClientID:  clientID,
		Sender:    sender,
		Message:   message,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️  Failed to marshal event %s: %v", eventType, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := p.redis.Publish(ctx, Channel, payload).Err(); err != nil {
		log.Printf("⚠️  Failed to publish event %s: %v", eventType, err)
	}
}

// Subscribe підписується на події панелі. Повертає канал подій;
// закривається разом з контекстом.
func Subscribe(ctx context.Context, redisClient *redis.Client) (<-chan Event, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required for subscribing")
	}

	pubsub := redisClient.Subscribe(ctx, Channel)

	// Дочекатись підтвердження підписки
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", Channel, err)
	}

	out := make(chan Event, 64)

	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("⚠️  Skipping malformed event payload: %v", err)
					continue
				}

				out <- event
			}
		}
	}()

	return out, nil
}
