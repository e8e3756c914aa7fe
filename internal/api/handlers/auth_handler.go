package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/auth"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/middleware"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

// AuthHandler обробляє authentication запити співробітників
type AuthHandler struct {
	employeeRepo repository.EmployeeRepository
	jwtManager   *auth.JWTManager
}

// NewAuthHandler створює новий AuthHandler
func NewAuthHandler(employeeRepo repository.EmployeeRepository, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		employeeRepo: employeeRepo,
		jwtManager:   jwtManager,
	}
}

// AdminLoginRequest структура запиту для login співробітника
type AdminLoginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

// AdminLoginResponse структура відповіді login
type AdminLoginResponse struct {
	Token     string           `json:"token"`
	ExpiresIn int64            `json:"expires_in"` // seconds
	Employee  EmployeeResponse `json:"employee"`
}

// EmployeeResponse структура для відповіді з даними співробітника
type EmployeeResponse struct {
	EmployeeID  string `json:"employee_id"`
	Nome        string `json:"nome"`
	Role        string `json:"role"`
	IsProtected bool   `json:"is_protected"`
	LastLoginAt string `json:"last_login_at,omitempty"`
}

// Login аутентифікує співробітника панелі.
// Невідомий employee_id та невірний пароль повертають ідентичну
// відповідь: UI не має розрізняти "wrong id" від "wrong password".
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest

	// Decode request body
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate input
	if strings.TrimSpace(req.EmployeeID) == "" || strings.TrimSpace(req.Password) == "" {
		respondError(w, http.StatusBadRequest, "Employee id and password are required")
		return
	}

	// Знайти співробітника
	employee, err := h.employeeRepo.GetByEmployeeID(req.EmployeeID)
	if err != nil {
		log.Printf("⚠️ Login attempt for non-existent employee: %s", req.EmployeeID)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// Перевірити пароль
	if !employee.CheckPassword(req.Password) {
		log.Printf("⚠️ Failed login attempt for employee: %s", req.EmployeeID)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// Генерувати JWT токен
	token, err := h.jwtManager.GenerateEmployeeToken(employee)
	if err != nil {
		log.Printf("❌ Failed to generate token: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	// Оновити last login
	if err := h.employeeRepo.UpdateLastLogin(employee.EmployeeID); err != nil {
		log.Printf("⚠️ Failed to update last login: %v", err)
	}

	log.Printf("✅ Employee logged in: %s (role: %s)", employee.EmployeeID, employee.Role)

	response := AdminLoginResponse{
		Token:     token,
		ExpiresIn: int64(h.jwtManager.TokenDuration().Seconds()),
		Employee:  employeeResponse(employee),
	}

	respondJSON(w, http.StatusOK, response)
}

// RefreshToken оновлює валідний токен
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	tokenString, err := auth.ExtractTokenFromBearer(authHeader)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid authorization header")
		return
	}

	newToken, err := h.jwtManager.RefreshToken(tokenString)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":      newToken,
		"expires_in": int64(h.jwtManager.TokenDuration().Seconds()),
	})
}

// Logout завершує сесію (на клієнті потрібно видалити токен та сесію)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// JWT токени stateless, тому logout виконується на клієнті
	claims := middleware.GetPrincipalFromContext(r.Context())
	if claims != nil {
		log.Printf("🚪 Employee logged out: %s", claims.EmployeeID)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// Me повертає профіль поточного співробітника
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetPrincipalFromContext(r.Context())
	if claims == nil || claims.Kind != auth.PrincipalAdminStaff {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	employee, err := h.employeeRepo.GetByEmployeeID(claims.EmployeeID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Employee not found")
		return
	}

	respondJSON(w, http.StatusOK, employeeResponse(employee))
}
