package portal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// typingIndicatorWindow скільки тримається декоративний typing
// індикатор співрозмовника після відправки повідомлення
const typingIndicatorWindow = 3 * time.Second

// ChatModel клієнтська модель розмови з оператором. Спеціалізація
// polling data client'а для повідомлень: транскрипт та прапорець
// доступності чату опитуються за фіксованими інтервалами.
//
// "Typing" та "read" стани ніколи не зберігаються у віддаленому
// сховищі - це чисто локальні симуляції без cross-client консистенції.
type ChatModel struct {
	auth *ClientAuth

	messages *Query[[]*models.ChatMessage]
	status   *Query[string]

	mu           sync.Mutex
	typingUntil  time.Time
	composeUntil time.Time
}

// NewChatModel створює модель чату поточного клієнта порталу
func NewChatModel(backend *Backend, auth *ClientAuth, chatInterval, statusInterval time.Duration) *ChatModel {
	m := &ChatModel{auth: auth}

	m.messages = NewQuery("chat_messages", chatInterval, func(ctx context.Context) ([]*models.ChatMessage, error) {
		token := auth.Token()
		if token == "" {
			return nil, ErrNotAuthenticated
		}
		return backend.GetMessages(ctx, token)
	})

	m.status = NewQuery("chat_status", statusInterval, func(ctx context.Context) (string, error) {
		token := auth.Token()
		if token == "" {
			return "", ErrNotAuthenticated
		}
		return backend.GetChatSystemStatus(ctx, token, false)
	})

	auth.BindCache(m.messages)
	auth.BindCache(m.status)

	return m
}

// Start запускає polling транскрипту та прапорця доступності
func (m *ChatModel) Start() {
	m.messages.Start()
	m.status.Start()
}

// Stop зупиняє polling (teardown при закритті view)
func (m *ChatModel) Stop() {
	m.messages.Stop()
	m.status.Stop()
}

// Messages повертає закешований транскрипт. Історія залишається
// видимою навіть коли чат offline.
func (m *ChatModel) Messages() []*models.ChatMessage {
	messages, _ := m.messages.Get()
	return messages
}

// Online перевіряє доступність чату. Поки перший poll не завершився,
// чат вважається доступним (дефолт сховища - online).
func (m *ChatModel) Online() bool {
	status, loaded := m.status.Get()
	if !loaded {
		return true
	}
	return status == string(models.ChatSystemOnline)
}

// Send відправляє повідомлення оператору. Коли чат offline, шлях
// відправки вимкнений і локально, і у сховищі. Успішна відправка
// інвалідує транскрипт для негайного refetch.
func (m *ChatModel) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if !m.Online() {
		return ErrForbidden
	}

	token := m.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	backend := m.backend()
	if _, err := backend.SendMessage(ctx, token, text); err != nil {
		return err
	}

	m.messages.Invalidate()

	// Декоративний typing індикатор: симулюємо що оператор
	// друкує відповідь. Реальний стан співрозмовника невідомий.
	m.mu.Lock()
	m.typingUntil = time.Now().Add(typingIndicatorWindow)
	m.mu.Unlock()

	return nil
}

// UnreadCount рахує повідомлення відправником яких є оператор.
// Переобчислюється з поточного транскрипту при кожному виклику, не
// зберігається як durable стан: без операції "mark as read" повторне
// обчислення без нових повідомлень дає те саме значення.
func (m *ChatModel) UnreadCount() int {
	messages, _ := m.messages.Get()

	count := 0
	for _, msg := range messages {
		if msg.Sender == models.OperatorIdentity {
			count++
		}
	}
	return count
}

// CounterpartTyping декоративний typing індикатор. Ніколи не
// відображає реальний стан оператора.
func (m *ChatModel) CounterpartTyping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Now().Before(m.typingUntil)
}

// NoteComposing відмічає що клієнт друкує (локальний debounce)
func (m *ChatModel) NoteComposing() {
	m.mu.Lock()
	m.composeUntil = time.Now().Add(typingIndicatorWindow)
	m.mu.Unlock()
}

// Composing чи клієнт зараз друкує
func (m *ChatModel) Composing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Now().Before(m.composeUntil)
}

// ReadReceiptIndex індекс останнього власного повідомлення що
// вважається прочитаним. "Read" виводиться з позиції: власне
// повідомлення за яким слідує повідомлення оператора трактується
// як прочитане. Жоден збережений прапорець не існує.
func (m *ChatModel) ReadReceiptIndex() int {
	messages, _ := m.messages.Get()

	last := -1
	for i, msg := range messages {
		if msg.Sender == models.OperatorIdentity {
			// Все власне до цієї позиції вважаємо прочитаним
			for j := i - 1; j >= 0; j-- {
				if messages[j].Sender != models.OperatorIdentity {
					if j > last {
						last = j
					}
					break
				}
			}
		}
	}
	return last
}

// InvalidateMessages форсує негайний refetch транскрипту
func (m *ChatModel) InvalidateMessages() {
	m.messages.Invalidate()
}

func (m *ChatModel) backend() *Backend {
	return m.auth.backend
}
