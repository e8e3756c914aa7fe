package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

// AccessLogHandler обробляє перегляд аудиту входів клієнтів
type AccessLogHandler struct {
	accessLogRepo repository.AccessLogRepository
}

// NewAccessLogHandler створює новий AccessLogHandler
func NewAccessLogHandler(accessLogRepo repository.AccessLogRepository) *AccessLogHandler {
	return &AccessLogHandler{accessLogRepo: accessLogRepo}
}

// List повертає записи аудиту з пагінацією (?limit=&offset=)
func (h *AccessLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 100)
	offset := parseQueryInt(r, "offset", 0)

	logs, err := h.accessLogRepo.List(limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list access logs")
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

// ListForClient повертає історію входів одного клієнта
func (h *AccessLogHandler) ListForClient(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["idLuid"]

	logs, err := h.accessLogRepo.ListByClient(clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list access logs")
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

func parseQueryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
