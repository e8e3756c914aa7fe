package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// chatPanel in-memory панельний API для чат тестів
type chatPanel struct {
	mu       sync.Mutex
	messages []*models.ChatMessage
	status   models.ChatSystemStatus
}

func (p *chatPanel) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/auth/client/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ClientLoginResult{
			Token:  "client-jwt",
			Record: &models.ClientRecord{IDLuid: "cliente001"},
		})
	})

	mux.HandleFunc("/api/v1/portal/chat", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(p.messages)
		case http.MethodPost:
			if p.status == models.ChatSystemOffline {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			var req struct {
				Message string `json:"message"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			msg := &models.ChatMessage{
				ClientID: "cliente001",
				Sender:   "cliente001",
				Receiver: models.OperatorIdentity,
				Message:  req.Message,
			}
			p.messages = append(p.messages, msg)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(msg)
		}
	})

	mux.HandleFunc("/api/v1/portal/chat-status", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"status": string(p.status)})
	})

	return httptest.NewServer(mux)
}

func newChatFixture(t *testing.T, panel *chatPanel) (*ChatModel, func()) {
	t.Helper()

	server := panel.server(t)

	store := newTestStore(t)
	auth := NewClientAuth(NewBackend(server.URL), store, nil)
	if err := auth.Login(context.Background(), "cliente001", "senha123", false); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	model := NewChatModel(auth.backend, auth, 10*time.Millisecond, 10*time.Millisecond)
	model.Start()

	return model, func() {
		model.Stop()
		server.Close()
	}
}

func operatorMessage(text string) *models.ChatMessage {
	return &models.ChatMessage{
		ClientID: "cliente001",
		Sender:   models.OperatorIdentity,
		Receiver: "cliente001",
		Message:  text,
	}
}

func clientMessage(text string) *models.ChatMessage {
	return &models.ChatMessage{
		ClientID: "cliente001",
		Sender:   "cliente001",
		Receiver: models.OperatorIdentity,
		Message:  text,
	}
}

func waitForMessages(t *testing.T, model *ChatModel, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(model.Messages()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d messages, have %d", n, len(model.Messages()))
}

// Unread рахується з поточного транскрипту при кожному виклику.
// Повторне обчислення без нових повідомлень дає те саме значення.
func TestUnreadCountIdempotent(t *testing.T) {
	panel := &chatPanel{
		status: models.ChatSystemOnline,
		messages: []*models.ChatMessage{
			operatorMessage("Olá"),
			clientMessage("Oi"),
			operatorMessage("Como posso ajudar?"),
		},
	}

	model, teardown := newChatFixture(t, panel)
	defer teardown()

	waitForMessages(t, model, 3)

	first := model.UnreadCount()
	if first != 2 {
		t.Errorf("Expected 2 unread operator messages, got %d", first)
	}

	if again := model.UnreadCount(); again != first {
		t.Errorf("Recomputing without new messages must be stable, got %d then %d", first, again)
	}
}

// Відправка не скидає unread до нуля: без операції "mark as read"
// лічильник повертається до справжнього відфільтрованого значення.
func TestSendDoesNotResetUnread(t *testing.T) {
	panel := &chatPanel{
		status:   models.ChatSystemOnline,
		messages: []*models.ChatMessage{operatorMessage("Olá")},
	}

	model, teardown := newChatFixture(t, panel)
	defer teardown()

	waitForMessages(t, model, 1)

	if err := model.Send(context.Background(), "Preciso de ajuda"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	waitForMessages(t, model, 2)

	if got := model.UnreadCount(); got != 1 {
		t.Errorf("Expected unread to return to the filtered count 1, got %d", got)
	}
}

// Коли чат offline, шлях відправки вимкнений, але вже отримана
// історія залишається видимою.
func TestOfflineBlocksSendKeepsHistory(t *testing.T) {
	panel := &chatPanel{
		status:   models.ChatSystemOnline,
		messages: []*models.ChatMessage{operatorMessage("Olá")},
	}

	model, teardown := newChatFixture(t, panel)
	defer teardown()

	waitForMessages(t, model, 1)

	panel.mu.Lock()
	panel.status = models.ChatSystemOffline
	panel.mu.Unlock()

	// Чекаємо поки status poll підхопить offline
	deadline := time.Now().Add(2 * time.Second)
	for model.Online() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if model.Online() {
		t.Fatal("Expected chat to go offline")
	}

	if err := model.Send(context.Background(), "ignored"); err != ErrForbidden {
		t.Errorf("Expected ErrForbidden when offline, got %v", err)
	}

	if len(model.Messages()) == 0 {
		t.Error("History must remain visible while offline")
	}
}

func TestTypingIndicatorIsDecorative(t *testing.T) {
	panel := &chatPanel{status: models.ChatSystemOnline}

	model, teardown := newChatFixture(t, panel)
	defer teardown()

	if model.CounterpartTyping() {
		t.Error("Typing indicator must start off")
	}

	if err := model.Send(context.Background(), "Oi"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if !model.CounterpartTyping() {
		t.Error("Expected decorative typing window after send")
	}
}

func TestReadReceiptInferredFromPosition(t *testing.T) {
	panel := &chatPanel{
		status: models.ChatSystemOnline,
		messages: []*models.ChatMessage{
			clientMessage("Oi"),        // 0 - followed by operator reply, read
			operatorMessage("Olá"),     // 1
			clientMessage("Tudo bem?"), // 2 - no reply after, not read
		},
	}

	model, teardown := newChatFixture(t, panel)
	defer teardown()

	waitForMessages(t, model, 3)

	if got := model.ReadReceiptIndex(); got != 0 {
		t.Errorf("Expected read receipt index 0, got %d", got)
	}
}

// Logout робить транскрипт попереднього клієнта недоступним одразу:
// кеш скидається, а не чекає наступного успішного fetch (який поза
// сесією і так фейлиться).
func TestLogoutPurgesCachedTranscript(t *testing.T) {
	panel := &chatPanel{
		status: models.ChatSystemOnline,
		messages: []*models.ChatMessage{
			operatorMessage("Credenciais atualizadas: vps-secret"),
		},
	}

	server := panel.server(t)
	defer server.Close()

	store := newTestStore(t)
	auth := NewClientAuth(NewBackend(server.URL), store, nil)
	if err := auth.Login(context.Background(), "cliente001", "senha123", false); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	model := NewChatModel(auth.backend, auth, 10*time.Millisecond, 10*time.Millisecond)
	model.Start()
	defer model.Stop()

	waitForMessages(t, model, 1)

	if err := auth.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if got := model.Messages(); len(got) != 0 {
		t.Fatalf("Expected empty transcript after logout, got %d messages", len(got))
	}
	if got := model.UnreadCount(); got != 0 {
		t.Errorf("Expected zero unread after logout, got %d", got)
	}

	// Кілька інтервалів опитування поза сесією: fetch фейлиться з
	// ErrNotAuthenticated і не має воскрешати старий транскрипт
	time.Sleep(50 * time.Millisecond)
	if got := model.Messages(); len(got) != 0 {
		t.Errorf("Transcript resurrected after logout: %d messages", len(got))
	}
}
