package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/push"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

// AnnouncementHandler обробляє глобальний анонс для всіх клієнтів
type AnnouncementHandler struct {
	settingsRepo repository.SettingsRepository
	hub          *push.Hub
}

// NewAnnouncementHandler створює новий AnnouncementHandler
func NewAnnouncementHandler(settingsRepo repository.SettingsRepository, hub *push.Hub) *AnnouncementHandler {
	return &AnnouncementHandler{
		settingsRepo: settingsRepo,
		hub:          hub,
	}
}

// Get повертає поточний анонс. Порожній рядок = анонсу немає.
func (h *AnnouncementHandler) Get(w http.ResponseWriter, r *http.Request) {
	announcement, err := h.settingsRepo.GlobalAnnouncement()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get announcement")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"announcement": announcement,
	})
}

// Set встановлює анонс для всіх клієнтів
func (h *AnnouncementHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Announcement string `json:"announcement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.settingsRepo.SetGlobalAnnouncement(req.Announcement); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to set announcement")
		return
	}

	log.Printf("📢 Global announcement set")

	h.hub.Broadcast(push.TypeAnnouncement, map[string]string{
		"announcement": req.Announcement,
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"announcement": req.Announcement,
	})
}

// Clear прибирає анонс з усіх дешбордів
func (h *AnnouncementHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.settingsRepo.ClearGlobalAnnouncement(); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to clear announcement")
		return
	}

	log.Printf("📢 Global announcement cleared")

	h.hub.Broadcast(push.TypeAnnouncement, map[string]string{
		"announcement": "",
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Announcement cleared",
	})
}
