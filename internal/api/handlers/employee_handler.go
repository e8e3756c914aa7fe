package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

// EmployeeHandler обробляє CRUD запити по співробітниках
type EmployeeHandler struct {
	employeeRepo repository.EmployeeRepository
}

// NewEmployeeHandler створює новий EmployeeHandler
func NewEmployeeHandler(employeeRepo repository.EmployeeRepository) *EmployeeHandler {
	return &EmployeeHandler{employeeRepo: employeeRepo}
}

// EmployeeRequest тіло запиту create/update співробітника
type EmployeeRequest struct {
	EmployeeID string `json:"employee_id"`
	Nome       string `json:"nome"`
	Password   string `json:"password,omitempty"`
	Role       string `json:"role"`
}

// List повертає всіх співробітників
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeRepo.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list employees")
		return
	}

	responses := make([]EmployeeResponse, 0, len(employees))
	for _, employee := range employees {
		responses = append(responses, employeeResponse(employee))
	}

	respondJSON(w, http.StatusOK, responses)
}

// Create створює нового співробітника
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.EmployeeID) == "" || strings.TrimSpace(req.Password) == "" {
		respondError(w, http.StatusBadRequest, "employee_id and password are required")
		return
	}

	role := models.EmployeeRole(req.Role)
	if req.Role == "" {
		role = models.EmployeeRoleEmployee
	}
	if !role.IsValid() {
		respondError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	employee := &models.Employee{
		EmployeeID: req.EmployeeID,
		Nome:       req.Nome,
		Role:       role,
	}

	if err := employee.SetPassword(req.Password); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	if err := h.employeeRepo.Create(employee); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			respondError(w, http.StatusConflict, "Employee id already exists")
			return
		}
		log.Printf("❌ Failed to create employee %s: %v", req.EmployeeID, err)
		respondError(w, http.StatusInternalServerError, "Failed to create employee")
		return
	}

	log.Printf("✅ Employee created: %s (role: %s)", employee.EmployeeID, employee.Role)

	respondJSON(w, http.StatusCreated, employeeResponse(employee))
}

// Update оновлює співробітника. Зміна ролі захищеного master акаунта
// відхиляється сховищем; тут вона конвертується у 403.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	employeeID := mux.Vars(r)["employeeId"]

	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	role := models.EmployeeRole(req.Role)
	if req.Role != "" && !role.IsValid() {
		respondError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	existing, err := h.employeeRepo.GetByEmployeeID(employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Employee not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to get employee")
		return
	}

	employee := &models.Employee{
		EmployeeID: employeeID,
		Nome:       req.Nome,
		Role:       existing.Role,
	}
	if req.Role != "" {
		employee.Role = role
	}
	if req.Nome == "" {
		employee.Nome = existing.Nome
	}
	if req.Password != "" {
		if err := employee.SetPassword(req.Password); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
	}

	if err := h.employeeRepo.Update(employee); err != nil {
		if errors.Is(err, repository.ErrProtectedEmployee) {
			respondError(w, http.StatusForbidden, "Bootstrap master role cannot be changed")
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Employee not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update employee")
		return
	}

	updated, err := h.employeeRepo.GetByEmployeeID(employeeID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get employee")
		return
	}

	respondJSON(w, http.StatusOK, employeeResponse(updated))
}

// Delete видаляє співробітника. Захищений master акаунт видалити не можна.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	employeeID := mux.Vars(r)["employeeId"]

	if err := h.employeeRepo.Delete(employeeID); err != nil {
		if errors.Is(err, repository.ErrProtectedEmployee) {
			respondError(w, http.StatusForbidden, "Bootstrap master cannot be deleted")
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Employee not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete employee")
		return
	}

	log.Printf("🗑️  Employee deleted: %s", employeeID)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Employee deleted",
	})
}

func employeeResponse(employee *models.Employee) EmployeeResponse {
	response := EmployeeResponse{
		EmployeeID:  employee.EmployeeID,
		Nome:        employee.Nome,
		Role:        string(employee.Role),
		IsProtected: employee.IsProtected,
	}
	if employee.LastLoginAt != nil {
		response.LastLoginAt = employee.LastLoginAt.Format("2006-01-02 15:04:05")
	}
	return response
}
