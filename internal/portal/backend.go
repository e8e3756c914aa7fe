package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// Backend - HTTP клієнт віддаленого сховища записів (панельного API).
// Кожен виклик виконує рівно один silent retry на transient збій,
// без backoff. Класифіковані помилки (404, 401, 409, 403) не
// ретраяться - повторювати їх немає сенсу.
type Backend struct {
	httpClient *http.Client
	baseURL    string
}

// NewBackend створює новий Backend клієнт
func NewBackend(baseURL string) *Backend {
	return &Backend{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// AdminLoginResult результат входу співробітника
type AdminLoginResult struct {
	Token     string          `json:"token"`
	ExpiresIn int64           `json:"expires_in"`
	Employee  EmployeeProfile `json:"employee"`
}

// ClientLoginResult результат входу клієнта порталу
type ClientLoginResult struct {
	Token     string               `json:"token"`
	ExpiresIn int64                `json:"expires_in"`
	Record    *models.ClientRecord `json:"record"`
}

// ClientRecordInput поля запису клієнта для create/update
type ClientRecordInput struct {
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

// EmployeeInput поля співробітника для create/update
type EmployeeInput struct {
	EmployeeID string `json:"employee_id"`
	Nome       string `json:"nome"`
	Password   string `json:"password,omitempty"`
	Role       string `json:"role"`
}

// ========== Authentication ==========

// AuthenticateEmployee валідує credentials співробітника
func (b *Backend) AuthenticateEmployee(ctx context.Context, employeeID, password string) (*AdminLoginResult, error) {
	var result AdminLoginResult
	err := b.do(ctx, http.MethodPost, "/auth/admin/login", "", map[string]string{
		"employee_id": employeeID,
		"password":    password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AuthenticateClient валідує credentials клієнта. ipAddress - публічна
// адреса визначена IP-lookup сервісом ("unknown" якщо lookup не вдався).
func (b *Backend) AuthenticateClient(ctx context.Context, idLuid, senha, ipAddress string) (*ClientLoginResult, error) {
	var result ClientLoginResult
	err := b.do(ctx, http.MethodPost, "/auth/client/login", "", map[string]string{
		"id_luid":    idLuid,
		"senha":      senha,
		"ip_address": ipAddress,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ClientMe повертає актуальний запис залогіненого клієнта
func (b *Backend) ClientMe(ctx context.Context, token string) (*models.ClientRecord, error) {
	var record models.ClientRecord
	if err := b.do(ctx, http.MethodGet, "/portal/me", token, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ========== Client record CRUD (admin) ==========

// GetAllClientRecords повертає всі записи клієнтів
func (b *Backend) GetAllClientRecords(ctx context.Context, token string) ([]*models.ClientRecord, error) {
	var records []*models.ClientRecord
	if err := b.do(ctx, http.MethodGet, "/admin/clients", token, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetClientRecord повертає запис клієнта за idLuid
func (b *Backend) GetClientRecord(ctx context.Context, token, idLuid string) (*models.ClientRecord, error) {
	var record models.ClientRecord
	if err := b.do(ctx, http.MethodGet, "/admin/clients/"+idLuid, token, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateClientRecord створює новий запис клієнта (лише master)
func (b *Backend) CreateClientRecord(ctx context.Context, token string, input *ClientRecordInput) (*models.ClientRecord, error) {
	var record models.ClientRecord
	if err := b.do(ctx, http.MethodPost, "/admin/clients", token, input, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateClientRecord оновлює запис клієнта (лише master)
func (b *Backend) UpdateClientRecord(ctx context.Context, token, idLuid string, input *ClientRecordInput) (*models.ClientRecord, error) {
	var record models.ClientRecord
	if err := b.do(ctx, http.MethodPut, "/admin/clients/"+idLuid, token, input, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateVMStatus частково оновлює лише VM статус
func (b *Backend) UpdateVMStatus(ctx context.Context, token, idLuid, status string) error {
	return b.do(ctx, http.MethodPatch, "/admin/clients/"+idLuid+"/vm-status", token, map[string]string{
		"vm_status": status,
	}, nil)
}

// DeleteClientRecord видаляє запис клієнта (лише master, незворотньо)
func (b *Backend) DeleteClientRecord(ctx context.Context, token, idLuid string) error {
	return b.do(ctx, http.MethodDelete, "/admin/clients/"+idLuid, token, nil, nil)
}

// ========== Employee CRUD (master) ==========

// GetAllEmployees повертає всіх співробітників
func (b *Backend) GetAllEmployees(ctx context.Context, token string) ([]*EmployeeProfile, error) {
	var employees []*EmployeeProfile
	if err := b.do(ctx, http.MethodGet, "/admin/employees", token, nil, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

// CreateEmployee створює нового співробітника
func (b *Backend) CreateEmployee(ctx context.Context, token string, input *EmployeeInput) error {
	return b.do(ctx, http.MethodPost, "/admin/employees", token, input, nil)
}

// UpdateEmployee оновлює співробітника. Зміна ролі bootstrap master
// відхиляється сховищем (ErrForbidden).
func (b *Backend) UpdateEmployee(ctx context.Context, token, employeeID string, input *EmployeeInput) error {
	return b.do(ctx, http.MethodPut, "/admin/employees/"+employeeID, token, input, nil)
}

// DeleteEmployee видаляє співробітника. Bootstrap master захищений.
func (b *Backend) DeleteEmployee(ctx context.Context, token, employeeID string) error {
	return b.do(ctx, http.MethodDelete, "/admin/employees/"+employeeID, token, nil, nil)
}

// ========== Announcements ==========

// GetGlobalAnnouncement повертає поточний анонс ("" = немає)
func (b *Backend) GetGlobalAnnouncement(ctx context.Context, token string, staff bool) (string, error) {
	path := "/portal/announcement"
	if staff {
		path = "/admin/announcement"
	}
	var resp struct {
		Announcement string `json:"announcement"`
	}
	if err := b.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return "", err
	}
	return resp.Announcement, nil
}

// SetGlobalAnnouncement встановлює анонс для всіх клієнтів
func (b *Backend) SetGlobalAnnouncement(ctx context.Context, token, announcement string) error {
	return b.do(ctx, http.MethodPut, "/admin/announcement", token, map[string]string{
		"announcement": announcement,
	}, nil)
}

// ClearGlobalAnnouncement прибирає анонс
func (b *Backend) ClearGlobalAnnouncement(ctx context.Context, token string) error {
	return b.do(ctx, http.MethodDelete, "/admin/announcement", token, nil, nil)
}

// ========== Status flags ==========

// GetChatSystemStatus повертає доступність чату ("online"/"offline")
func (b *Backend) GetChatSystemStatus(ctx context.Context, token string, staff bool) (string, error) {
	path := "/portal/chat-status"
	if staff {
		path = "/admin/settings/chat-status"
	}
	return b.getStatus(ctx, path, token)
}

// SetChatSystemStatus вмикає або вимикає чат підтримки
func (b *Backend) SetChatSystemStatus(ctx context.Context, token, status string) error {
	return b.do(ctx, http.MethodPut, "/admin/settings/chat-status", token, map[string]string{
		"status": status,
	}, nil)
}

// GetNetworkMonitoringStatus повертає прапорець симуляції графіка ("on"/"off")
func (b *Backend) GetNetworkMonitoringStatus(ctx context.Context, token string, staff bool) (string, error) {
	path := "/portal/network-monitoring"
	if staff {
		path = "/admin/settings/network-monitoring"
	}
	return b.getStatus(ctx, path, token)
}

// UpdateNetworkMonitoringStatus встановлює прапорець симуляції
func (b *Backend) UpdateNetworkMonitoringStatus(ctx context.Context, token, status string) error {
	return b.do(ctx, http.MethodPut, "/admin/settings/network-monitoring", token, map[string]string{
		"status": status,
	}, nil)
}

func (b *Backend) getStatus(ctx context.Context, path, token string) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := b.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// ========== Notifications ==========

// AddNotification додає повідомлення в інбокс клієнта (операторська дія)
func (b *Backend) AddNotification(ctx context.Context, token, idLuid, message string) error {
	return b.do(ctx, http.MethodPost, "/admin/clients/"+idLuid+"/notifications", token, map[string]string{
		"message": message,
	}, nil)
}

// GetNotifications повертає інбокс поточного клієнта порталу
func (b *Backend) GetNotifications(ctx context.Context, token string) ([]*models.Notification, error) {
	var notifications []*models.Notification
	if err := b.do(ctx, http.MethodGet, "/portal/notifications", token, nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// ClearNotifications очищає інбокс поточного клієнта порталу
func (b *Backend) ClearNotifications(ctx context.Context, token string) error {
	return b.do(ctx, http.MethodDelete, "/portal/notifications", token, nil, nil)
}

// ========== Chat ==========

// GetMessages повертає транскрипт розмови поточного клієнта.
// Історія читається навіть коли чат offline.
func (b *Backend) GetMessages(ctx context.Context, token string) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	if err := b.do(ctx, http.MethodGet, "/portal/chat", token, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage відправляє повідомлення оператору. Коли чат offline
// сховище відхиляє виклик (ErrForbidden).
func (b *Backend) SendMessage(ctx context.Context, token, message string) (*models.ChatMessage, error) {
	var sent models.ChatMessage
	err := b.do(ctx, http.MethodPost, "/portal/chat", token, map[string]string{
		"message": message,
	}, &sent)
	if err != nil {
		return nil, err
	}
	return &sent, nil
}

// GetConversation повертає розмову клієнта (операторський перегляд)
func (b *Backend) GetConversation(ctx context.Context, token, idLuid string) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	if err := b.do(ctx, http.MethodGet, "/admin/clients/"+idLuid+"/chat", token, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendOperatorMessage відправляє повідомлення від оператора клієнту
func (b *Backend) SendOperatorMessage(ctx context.Context, token, idLuid, message string) (*models.ChatMessage, error) {
	var sent models.ChatMessage
	err := b.do(ctx, http.MethodPost, "/admin/clients/"+idLuid+"/chat", token, map[string]string{
		"message": message,
	}, &sent)
	if err != nil {
		return nil, err
	}
	return &sent, nil
}

// ClearMessages очищає розмову клієнта (операторська дія)
func (b *Backend) ClearMessages(ctx context.Context, token, idLuid string) error {
	return b.do(ctx, http.MethodDelete, "/admin/clients/"+idLuid+"/chat", token, nil, nil)
}

// ========== Access logs ==========

// GetAccessLogs повертає аудит логінів клієнта
func (b *Backend) GetAccessLogs(ctx context.Context, token, idLuid string) ([]*models.AccessLog, error) {
	var logs []*models.AccessLog
	if err := b.do(ctx, http.MethodGet, "/admin/clients/"+idLuid+"/access-logs", token, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// ========== Transport ==========

// do виконує один HTTP виклик з одним silent retry на transient збій.
// Помилки 404/401/409/403 класифікуються одразу і не ретраяться.
func (b *Backend) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	err := b.doOnce(ctx, method, path, token, body, out)
	if err == nil || !isTransient(err) {
		return err
	}

	// Single silent retry, no backoff
	retryErr := b.doOnce(ctx, method, path, token, body, out)
	if retryErr == nil {
		return nil
	}
	if !isTransient(retryErr) {
		// Retry дійшов до сервера і отримав класифіковану відповідь
		return retryErr
	}

	return ErrTransient
}

func (b *Backend) doOnce(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+"/api/v1"+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errNetwork, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: malformed response: %v", errNetwork, err)
		}
	}

	return nil
}

// errNetwork внутрішній маркер мережевого збою до retry
var errNetwork = fmt.Errorf("network error")

func isTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case err == ErrNotFound, err == ErrInvalidCredentials, err == ErrDuplicateID, err == ErrForbidden:
		return false
	}
	return true
}

func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized:
		return ErrInvalidCredentials
	case code == http.StatusConflict:
		return ErrDuplicateID
	case code == http.StatusForbidden:
		return ErrForbidden
	case code >= 500:
		return fmt.Errorf("%w: server returned %d", errNetwork, code)
	default:
		return fmt.Errorf("%w: unexpected status %d", errNetwork, code)
	}
}
