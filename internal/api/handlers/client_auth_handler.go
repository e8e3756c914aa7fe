package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/auth"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/middleware"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/events"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

// ClientAuthHandler обробляє вхід клієнтів у портал
type ClientAuthHandler struct {
	clientRepo    repository.ClientRepository
	accessLogRepo repository.AccessLogRepository
	jwtManager    *auth.JWTManager
	publisher     *events.Publisher
}

// NewClientAuthHandler створює новий ClientAuthHandler
func NewClientAuthHandler(
	clientRepo repository.ClientRepository,
	accessLogRepo repository.AccessLogRepository,
	jwtManager *auth.JWTManager,
	publisher *events.Publisher,
) *ClientAuthHandler {
	return &ClientAuthHandler{
		clientRepo:    clientRepo,
		accessLogRepo: accessLogRepo,
		jwtManager:    jwtManager,
		publisher:     publisher,
	}
}

// ClientLoginRequest структура запиту для login клієнта.
// IPAddress резолвиться порталом через зовнішній IP-lookup сервіс;
// "unknown" якщо lookup не вдався.
type ClientLoginRequest struct {
	IDLuid    string `json:"id_luid"`
	Senha     string `json:"senha"`
	IPAddress string `json:"ip_address,omitempty"`
}

// ClientLoginResponse відповідь з токеном та повним записом клієнта.
// Портал зберігає весь запис у сесії, включно з VPS credentials.
type ClientLoginResponse struct {
	Token     string               `json:"token"`
	ExpiresIn int64                `json:"expires_in"` // seconds
	Record    *models.ClientRecord `json:"record"`
}

// Login аутентифікує клієнта порталу. Відповідь для невідомого id_luid
// і для невірного пароля однакова (information hiding). Успішний вхід
// завжди пише запис аудиту; збій IP-lookup ніколи не блокує логін.
func (h *ClientAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req ClientLoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.IDLuid) == "" || strings.TrimSpace(req.Senha) == "" {
		respondError(w, http.StatusBadRequest, "Client id and password are required")
		return
	}

	record, err := h.clientRepo.GetByIDLuid(req.IDLuid)
	if err != nil {
		log.Printf("⚠️ Portal login attempt for non-existent client: %s", req.IDLuid)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !record.CheckPortalPassword(req.Senha) {
		log.Printf("⚠️ Failed portal login for client: %s", req.IDLuid)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwtManager.GenerateClientToken(record)
	if err != nil {
		log.Printf("❌ Failed to generate client token: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	// Аудит входу: IP з запиту порталу, fallback на адресу з'єднання
	ipAddress := req.IPAddress
	if ipAddress == "" {
		ipAddress = middleware.GetIP(r)
	}
	if ipAddress == "" {
		ipAddress = "unknown"
	}
	if err := h.accessLogRepo.Append(record.IDLuid, ipAddress); err != nil {
		log.Printf("⚠️ Failed to write access log for %s: %v", record.IDLuid, err)
	}

	h.publisher.Publish(events.EventClientLogin, record.IDLuid, "", ipAddress)

	log.Printf("✅ Client logged in: %s", record.IDLuid)

	respondJSON(w, http.StatusOK, ClientLoginResponse{
		Token:     token,
		ExpiresIn: int64(h.jwtManager.TokenDuration().Seconds()),
		Record:    record,
	})
}

// Me повертає актуальний запис клієнта. Портал викликає його з
// refresh() щоб оновити сесійний знімок (напр. зміну VM статусу).
func (h *ClientAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetPrincipalFromContext(r.Context())
	if claims == nil || claims.Kind != auth.PrincipalClient {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	record, err := h.clientRepo.GetByIDLuid(claims.IDLuid)
	if err != nil {
		// Запис видалено поки клієнт був залогінений
		respondError(w, http.StatusNotFound, "Client record not found")
		return
	}

	respondJSON(w, http.StatusOK, record)
}
