package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/middleware"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/push"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

// NotificationHandler обробляє інбокс повідомлень клієнтів
type NotificationHandler struct {
	notifRepo repository.NotificationRepository
	hub       *push.Hub
}

// NewNotificationHandler створює новий NotificationHandler
func NewNotificationHandler(notifRepo repository.NotificationRepository, hub *push.Hub) *NotificationHandler {
	return &NotificationHandler{
		notifRepo: notifRepo,
		hub:       hub,
	}
}

// Add додає повідомлення в інбокс клієнта (операторська дія)
func (h *NotificationHandler) Add(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["idLuid"]

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	if err := h.notifRepo.Add(clientID, req.Message); err != nil {
		log.Printf("❌ Failed to add notification for %s: %v", clientID, err)
		respondError(w, http.StatusInternalServerError, "Failed to add notification")
		return
	}

	h.hub.SendToClient(clientID, push.TypeNotification, map[string]string{
		"message": req.Message,
	})

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "Notification added",
	})
}

// ListForClient повертає інбокс клієнта (операторський перегляд)
func (h *NotificationHandler) ListForClient(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["idLuid"]
	h.list(w, clientID)
}

// Clear очищає інбокс клієнта (операторська дія)
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["idLuid"]
	h.clear(w, clientID)
}

// ListOwn повертає інбокс поточного клієнта порталу
func (h *NotificationHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetPrincipalFromContext(r.Context())
	h.list(w, claims.IDLuid)
}

// ClearOwn очищає інбокс поточного клієнта порталу
func (h *NotificationHandler) ClearOwn(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetPrincipalFromContext(r.Context())
	h.clear(w, claims.IDLuid)
}

func (h *NotificationHandler) list(w http.ResponseWriter, clientID string) {
	notifications, err := h.notifRepo.ListByClient(clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}

	respondJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) clear(w http.ResponseWriter, clientID string) {
	if err := h.notifRepo.ClearByClient(clientID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to clear notifications")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Notifications cleared",
	})
}
