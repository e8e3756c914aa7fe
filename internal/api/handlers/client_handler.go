package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/push"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/events"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

// ClientHandler обробляє CRUD запити по записах клієнтів
type ClientHandler struct {
	clientRepo repository.ClientRepository
	publisher  *events.Publisher
	hub        *push.Hub
}

// NewClientHandler створює новий ClientHandler
func NewClientHandler(clientRepo repository.ClientRepository, publisher *events.Publisher, hub *push.Hub) *ClientHandler {
	return &ClientHandler{
		clientRepo: clientRepo,
		publisher:  publisher,
		hub:        hub,
	}
}

// ClientRecordRequest тіло запиту create/update клієнта.
// Опціональні поля (vm_status, operating_system, plan_expiry) можуть
// бути відсутні — застосовуються дефолти.
type ClientRecordRequest struct {
	IDLuid          string     `json:"id_luid"`
	Nome            string     `json:"nome"`
	SenhaCliente    string     `json:"senha_cliente"`
	IPVps           string     `json:"ip_vps"`
	UserVps         string     `json:"user_vps"`
	SenhaVps        string     `json:"senha_vps"`
	Plano           string     `json:"plano"`
	VMStatus        string     `json:"vm_status,omitempty"`
	OperatingSystem string     `json:"operating_system,omitempty"`
	PlanExpiry      *time.Time `json:"plan_expiry,omitempty"`
}

// List повертає всіх клієнтів
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.clientRepo.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// Get повертає одного клієнта за id_luid
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	idLuid := mux.Vars(r)["idLuid"]

	record, err := h.clientRepo.GetByIDLuid(idLuid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Client not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to get client")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// Create створює нового клієнта. Дубльований id_luid повертає 409,
// попередній запис залишається без змін — форма зберігає стан для
// виправлення.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ClientRecordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.IDLuid) == "" || strings.TrimSpace(req.Nome) == "" {
		respondError(w, http.StatusBadRequest, "id_luid and nome are required")
		return
	}

	record := req.toModel()
	if req.VMStatus != "" && !record.VMStatus.IsValid() {
		respondError(w, http.StatusBadRequest, "Invalid vm_status")
		return
	}
	if req.OperatingSystem != "" && !record.OperatingSystem.IsValid() {
		respondError(w, http.StatusBadRequest, "Invalid operating_system")
		return
	}

	if err := h.clientRepo.Create(record); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			respondError(w, http.StatusConflict, "Client id already exists")
			return
		}
		log.Printf("❌ Failed to create client %s: %v", req.IDLuid, err)
		respondError(w, http.StatusInternalServerError, "Failed to create client")
		return
	}

	log.Printf("✅ Client created: %s (plano: %s)", record.IDLuid, record.Plano)

	respondJSON(w, http.StatusCreated, record)
}

// Update оновлює всі атрибути клієнта
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	idLuid := mux.Vars(r)["idLuid"]

	var req ClientRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.IDLuid = idLuid
	record := req.toModel()
	if req.VMStatus != "" && !record.VMStatus.IsValid() {
		respondError(w, http.StatusBadRequest, "Invalid vm_status")
		return
	}
	if req.OperatingSystem != "" && !record.OperatingSystem.IsValid() {
		respondError(w, http.StatusBadRequest, "Invalid operating_system")
		return
	}

	if err := h.clientRepo.Update(record); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Client not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update client")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// UpdateVMStatus частково оновлює лише VM статус
func (h *ClientHandler) UpdateVMStatus(w http.ResponseWriter, r *http.Request) {
	idLuid := mux.Vars(r)["idLuid"]

	var req struct {
		VMStatus string `json:"vm_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status := models.VMStatus(req.VMStatus)
	if !status.IsValid() {
		respondError(w, http.StatusBadRequest, "Invalid vm_status")
		return
	}

	if err := h.clientRepo.UpdateVMStatus(idLuid, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Client not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update VM status")
		return
	}

	log.Printf("🖥️  VM status for %s -> %s", idLuid, status)

	h.publisher.Publish(events.EventVMStatusChanged, idLuid, "", string(status))
	h.hub.SendToClient(idLuid, push.TypeVMStatus, map[string]string{
		"id_luid":   idLuid,
		"vm_status": string(status),
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"id_luid":   idLuid,
		"vm_status": string(status),
	})
}

// Delete видаляє клієнта остаточно
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	idLuid := mux.Vars(r)["idLuid"]

	if err := h.clientRepo.Delete(idLuid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Client not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	log.Printf("🗑️  Client deleted: %s", idLuid)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Client deleted",
	})
}

func (req *ClientRecordRequest) toModel() *models.ClientRecord {
	record := &models.ClientRecord{
		IDLuid:          req.IDLuid,
		Nome:            req.Nome,
		SenhaCliente:    req.SenhaCliente,
		IPVps:           req.IPVps,
		UserVps:         req.UserVps,
		SenhaVps:        req.SenhaVps,
		Plano:           req.Plano,
		VMStatus:        models.VMStatus(req.VMStatus),
		OperatingSystem: models.OperatingSystem(req.OperatingSystem),
		PlanExpiry:      req.PlanExpiry,
	}
	record.ApplyDefaults()
	return record
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
