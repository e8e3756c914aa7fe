package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/push"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

// SystemHandler обробляє системні прапорці та статистику дешборда
type SystemHandler struct {
	clientRepo   repository.ClientRepository
	employeeRepo repository.EmployeeRepository
	settingsRepo repository.SettingsRepository
	hub          *push.Hub
}

// NewSystemHandler створює новий SystemHandler
func NewSystemHandler(
	clientRepo repository.ClientRepository,
	employeeRepo repository.EmployeeRepository,
	settingsRepo repository.SettingsRepository,
	hub *push.Hub,
) *SystemHandler {
	return &SystemHandler{
		clientRepo:   clientRepo,
		employeeRepo: employeeRepo,
		settingsRepo: settingsRepo,
		hub:          hub,
	}
}

// NetworkMonitoringStatus повертає прапорець симуляції мережевого графіка
func (h *SystemHandler) NetworkMonitoringStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.settingsRepo.NetworkMonitoringStatus()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get network monitoring status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": status,
	})
}

// SetNetworkMonitoringStatus вмикає або вимикає симуляцію графіка
func (h *SystemHandler) SetNetworkMonitoringStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Status != "on" && req.Status != "off" {
		respondError(w, http.StatusBadRequest, "Status must be 'on' or 'off'")
		return
	}

	if err := h.settingsRepo.SetNetworkMonitoringStatus(req.Status); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to set network monitoring status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": req.Status,
	})
}

// Dashboard повертає агреговану статистику для адмін панелі
func (h *SystemHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	clientCount, err := h.clientRepo.CountAll()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count clients")
		return
	}

	employeeCount, err := h.employeeRepo.CountAll()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count employees")
		return
	}

	records, err := h.clientRepo.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	byStatus := map[models.VMStatus]int{}
	for _, record := range records {
		byStatus[record.VMStatus]++
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"clients_total":     clientCount,
		"employees_total":   employeeCount,
		"vms_online":        byStatus[models.VMStatusOnline],
		"vms_offline":       byStatus[models.VMStatusOffline],
		"vms_maintenance":   byStatus[models.VMStatusMaintenance],
		"portal_websockets": h.hub.ConnectedCount(),
	})
}
