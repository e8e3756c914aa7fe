package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/middleware"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/push"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/events"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

// ChatHandler обробляє чат підтримки: транскрипти, відправку та
// прапорець доступності чату
type ChatHandler struct {
	chatRepo     repository.ChatRepository
	settingsRepo repository.SettingsRepository
	publisher    *events.Publisher
	hub          *push.Hub
}

// NewChatHandler створює новий ChatHandler
func NewChatHandler(
	chatRepo repository.ChatRepository,
	settingsRepo repository.SettingsRepository,
	publisher *events.Publisher,
	hub *push.Hub,
) *ChatHandler {
	return &ChatHandler{
		chatRepo:     chatRepo,
		settingsRepo: settingsRepo,
		publisher:    publisher,
		hub:          hub,
	}
}

// SendMessageRequest тіло запиту відправки повідомлення
type SendMessageRequest struct {
	Message string `json:"message"`
}

// Conversation повертає транскрипт розмови клієнта (операторський бік)
func (h *ChatHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["idLuid"]
	h.conversation(w, clientID)
}

// OperatorSend відправляє повідомлення від оператора клієнту
func (h *ChatHandler) OperatorSend(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["idLuid"]

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	message := &models.ChatMessage{
		ClientID: clientID,
		Sender:   models.OperatorIdentity,
		Receiver: clientID,
		Message:  req.Message,
	}

	if err := h.chatRepo.Append(message); err != nil {
		log.Printf("❌ Failed to append operator message for %s: %v", clientID, err)
		respondError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	h.hub.SendToClient(clientID, push.TypeChatMessage, message)

	respondJSON(w, http.StatusCreated, message)
}

// ClearConversation очищає розмову клієнта (операторська дія)
func (h *ChatHandler) ClearConversation(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["idLuid"]

	if err := h.chatRepo.ClearConversation(clientID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to clear conversation")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Conversation cleared",
	})
}

// OwnConversation повертає транскрипт поточного клієнта порталу.
// Історія доступна для читання навіть коли чат вимкнений.
func (h *ChatHandler) OwnConversation(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetPrincipalFromContext(r.Context())
	h.conversation(w, claims.IDLuid)
}

// ClientSend відправляє повідомлення від клієнта оператору.
// Коли чат вимкнений, відправка блокується і на сервері, не лише в UI.
func (h *ChatHandler) ClientSend(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetPrincipalFromContext(r.Context())

	status, err := h.settingsRepo.ChatSystemStatus()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to check chat status")
		return
	}
	if status == models.ChatSystemOffline {
		respondError(w, http.StatusForbidden, "Chat system is offline")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	message := &models.ChatMessage{
		ClientID: claims.IDLuid,
		Sender:   claims.IDLuid,
		Receiver: models.OperatorIdentity,
		Message:  req.Message,
	}

	if err := h.chatRepo.Append(message); err != nil {
		log.Printf("❌ Failed to append client message for %s: %v", claims.IDLuid, err)
		respondError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	h.publisher.Publish(events.EventChatMessage, claims.IDLuid, claims.IDLuid, req.Message)

	respondJSON(w, http.StatusCreated, message)
}

// ChatStatus повертає поточну доступність чату
func (h *ChatHandler) ChatStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.settingsRepo.ChatSystemStatus()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get chat status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": string(status),
	})
}

// SetChatStatus вмикає або вимикає чат підтримки (операторська дія)
func (h *ChatHandler) SetChatStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status := models.ChatSystemStatus(req.Status)
	if status != models.ChatSystemOnline && status != models.ChatSystemOffline {
		respondError(w, http.StatusBadRequest, "Invalid chat status")
		return
	}

	if err := h.settingsRepo.SetChatSystemStatus(status); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to set chat status")
		return
	}

	log.Printf("💬 Chat system status -> %s", status)

	respondJSON(w, http.StatusOK, map[string]string{
		"status": string(status),
	})
}

func (h *ChatHandler) conversation(w http.ResponseWriter, clientID string) {
	messages, err := h.chatRepo.Conversation(clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get conversation")
		return
	}

	respondJSON(w, http.StatusOK, messages)
}
