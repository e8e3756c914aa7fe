package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/config"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/events"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

// Mock repositories for testing

type mockClientRepo struct {
	records map[string]*models.ClientRecord
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{records: make(map[string]*models.ClientRecord)}
}

func (m *mockClientRepo) Create(record *models.ClientRecord) error {
	if _, exists := m.records[record.IDLuid]; exists {
		return repository.ErrDuplicateID
	}
	m.records[record.IDLuid] = record
	return nil
}

func (m *mockClientRepo) Update(record *models.ClientRecord) error {
	if _, exists := m.records[record.IDLuid]; !exists {
		return repository.ErrNotFound
	}
	m.records[record.IDLuid] = record
	return nil
}

func (m *mockClientRepo) UpdateVMStatus(idLuid string, status models.VMStatus) error {
	record, exists := m.records[idLuid]
	if !exists {
		return repository.ErrNotFound
	}
	record.VMStatus = status
	return nil
}

func (m *mockClientRepo) GetByIDLuid(idLuid string) (*models.ClientRecord, error) {
	record, exists := m.records[idLuid]
	if !exists {
		return nil, repository.ErrNotFound
	}
	return record, nil
}

func (m *mockClientRepo) List() ([]*models.ClientRecord, error) {
	result := make([]*models.ClientRecord, 0, len(m.records))
	for _, r := range m.records {
		result = append(result, r)
	}
	return result, nil
}

func (m *mockClientRepo) ListExpiringWithin(days int) ([]*models.ClientRecord, error) {
	return nil, nil
}

func (m *mockClientRepo) Delete(idLuid string) error {
	if _, exists := m.records[idLuid]; !exists {
		return repository.ErrNotFound
	}
	delete(m.records, idLuid)
	return nil
}

func (m *mockClientRepo) CountAll() (int64, error) {
	return int64(len(m.records)), nil
}

type mockEmployeeRepo struct {
	employees map[string]*models.Employee
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*models.Employee)}
}

func (m *mockEmployeeRepo) Create(employee *models.Employee) error {
	if _, exists := m.employees[employee.EmployeeID]; exists {
		return repository.ErrDuplicateID
	}
	m.employees[employee.EmployeeID] = employee
	return nil
}

func (m *mockEmployeeRepo) Update(employee *models.Employee) error {
	existing, exists := m.employees[employee.EmployeeID]
	if !exists {
		return repository.ErrNotFound
	}
	if existing.IsProtected && employee.Role != existing.Role {
		return repository.ErrProtectedEmployee
	}
	employee.IsProtected = existing.IsProtected
	m.employees[employee.EmployeeID] = employee
	return nil
}

func (m *mockEmployeeRepo) GetByEmployeeID(employeeID string) (*models.Employee, error) {
	employee, exists := m.employees[employeeID]
	if !exists {
		return nil, repository.ErrNotFound
	}
	return employee, nil
}

func (m *mockEmployeeRepo) List() ([]*models.Employee, error) {
	result := make([]*models.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	return result, nil
}

func (m *mockEmployeeRepo) Delete(employeeID string) error {
	existing, exists := m.employees[employeeID]
	if !exists {
		return repository.ErrNotFound
	}
	if existing.IsProtected {
		return repository.ErrProtectedEmployee
	}
	delete(m.employees, employeeID)
	return nil
}

func (m *mockEmployeeRepo) CountAll() (int64, error) {
	return int64(len(m.employees)), nil
}

func (m *mockEmployeeRepo) UpdateLastLogin(employeeID string) error {
	return nil
}

type mockNotifRepo struct {
	byClient map[string][]*models.Notification
}

func newMockNotifRepo() *mockNotifRepo {
	return &mockNotifRepo{byClient: make(map[string][]*models.Notification)}
}

func (m *mockNotifRepo) Add(clientID, message string) error {
	m.byClient[clientID] = append(m.byClient[clientID], &models.Notification{
		ClientID: clientID,
		Message:  message,
	})
	return nil
}

func (m *mockNotifRepo) ListByClient(clientID string) ([]*models.Notification, error) {
	return m.byClient[clientID], nil
}

func (m *mockNotifRepo) HasMessage(clientID, message string) (bool, error) {
	for _, n := range m.byClient[clientID] {
		if n.Message == message {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockNotifRepo) ClearByClient(clientID string) error {
	delete(m.byClient, clientID)
	return nil
}

func (m *mockNotifRepo) DeleteOlderThanDays(days int) (int64, error) {
	return 0, nil
}

type mockChatRepo struct {
	byClient map[string][]*models.ChatMessage
}

func newMockChatRepo() *mockChatRepo {
	return &mockChatRepo{byClient: make(map[string][]*models.ChatMessage)}
}

func (m *mockChatRepo) Append(message *models.ChatMessage) error {
	m.byClient[message.ClientID] = append(m.byClient[message.ClientID], message)
	return nil
}

func (m *mockChatRepo) Conversation(clientID string) ([]*models.ChatMessage, error) {
	return m.byClient[clientID], nil
}

func (m *mockChatRepo) ClearConversation(clientID string) error {
	delete(m.byClient, clientID)
	return nil
}

type mockAccessLogRepo struct {
	logs []*models.AccessLog
}

func (m *mockAccessLogRepo) Append(clientID, ipAddress string) error {
	m.logs = append(m.logs, &models.AccessLog{ClientID: clientID, IPAddress: ipAddress})
	return nil
}

func (m *mockAccessLogRepo) List(limit, offset int) ([]*models.AccessLog, error) {
	return m.logs, nil
}

func (m *mockAccessLogRepo) ListByClient(clientID string) ([]*models.AccessLog, error) {
	result := make([]*models.AccessLog, 0)
	for _, l := range m.logs {
		if l.ClientID == clientID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockAccessLogRepo) DeleteOlderThanDays(days int) (int64, error) {
	return 0, nil
}

type mockSettingsRepo struct {
	announcement string
	chatStatus   models.ChatSystemStatus
	netStatus    string
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{chatStatus: models.ChatSystemOnline, netStatus: "on"}
}

func (m *mockSettingsRepo) GlobalAnnouncement() (string, error) {
	return m.announcement, nil
}

func (m *mockSettingsRepo) SetGlobalAnnouncement(announcement string) error {
	m.announcement = announcement
	return nil
}

func (m *mockSettingsRepo) ClearGlobalAnnouncement() error {
	m.announcement = ""
	return nil
}

func (m *mockSettingsRepo) ChatSystemStatus() (models.ChatSystemStatus, error) {
	return m.chatStatus, nil
}

func (m *mockSettingsRepo) SetChatSystemStatus(status models.ChatSystemStatus) error {
	m.chatStatus = status
	return nil
}

func (m *mockSettingsRepo) NetworkMonitoringStatus() (string, error) {
	return m.netStatus, nil
}

func (m *mockSettingsRepo) SetNetworkMonitoringStatus(status string) error {
	m.netStatus = status
	return nil
}

// Test fixture

type fixture struct {
	server       *Server
	clientRepo   *mockClientRepo
	employeeRepo *mockEmployeeRepo
	chatRepo     *mockChatRepo
	settingsRepo *mockSettingsRepo
	accessLogs   *mockAccessLogRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Environment: "development"},
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			JWTSecret:      "test-secret",
			AllowedOrigins: []string{"*"},
			RateLimit:      1000,
		},
	}

	f := &fixture{
		clientRepo:   newMockClientRepo(),
		employeeRepo: newMockEmployeeRepo(),
		chatRepo:     newMockChatRepo(),
		settingsRepo: newMockSettingsRepo(),
		accessLogs:   &mockAccessLogRepo{},
	}

	// Bootstrap master + звичайний співробітник
	master := &models.Employee{
		EmployeeID:  "admin",
		Nome:        "Administrator",
		Role:        models.EmployeeRoleMaster,
		IsProtected: true,
	}
	if err := master.SetPassword("master-pass"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	f.employeeRepo.employees["admin"] = master

	staff := &models.Employee{
		EmployeeID: "joao",
		Nome:       "João",
		Role:       models.EmployeeRoleEmployee,
	}
	if err := staff.SetPassword("staff-pass"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	f.employeeRepo.employees["joao"] = staff

	f.server = NewServer(
		cfg,
		f.clientRepo,
		f.employeeRepo,
		newMockNotifRepo(),
		f.chatRepo,
		f.accessLogs,
		f.settingsRepo,
		events.NewPublisher(nil),
	)

	return f
}

func (f *fixture) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	f.server.Router().ServeHTTP(recorder, req)
	return recorder
}

func (f *fixture) login(t *testing.T, employeeID, password string) string {
	t.Helper()

	resp := f.request(t, http.MethodPost, "/api/v1/auth/admin/login", "", map[string]string{
		"employee_id": employeeID,
		"password":    password,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("Login failed with status %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	return result.Token
}

func (f *fixture) clientLogin(t *testing.T, idLuid, senha string) string {
	t.Helper()

	resp := f.request(t, http.MethodPost, "/api/v1/auth/client/login", "", map[string]string{
		"id_luid": idLuid,
		"senha":   senha,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("Client login failed with status %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	return result.Token
}

func (f *fixture) seedClient(idLuid, senha, plano string) {
	record := &models.ClientRecord{
		IDLuid:       idLuid,
		Nome:         "Cliente",
		SenhaCliente: senha,
		Plano:        plano,
	}
	record.ApplyDefaults()
	f.clientRepo.records[idLuid] = record
}

// Tests

// Невідомий employee_id та невірний пароль мають повертати
// ідентичну відповідь
func TestAdminLoginIdenticalFailureResponses(t *testing.T) {
	f := newFixture(t)

	unknownID := f.request(t, http.MethodPost, "/api/v1/auth/admin/login", "", map[string]string{
		"employee_id": "ghost",
		"password":    "whatever",
	})
	wrongPass := f.request(t, http.MethodPost, "/api/v1/auth/admin/login", "", map[string]string{
		"employee_id": "admin",
		"password":    "wrong",
	})

	if unknownID.Code != http.StatusUnauthorized || wrongPass.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for both, got %d and %d", unknownID.Code, wrongPass.Code)
	}
	if unknownID.Body.String() != wrongPass.Body.String() {
		t.Errorf("Responses must be indistinguishable: %q vs %q", unknownID.Body.String(), wrongPass.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodGet, "/api/v1/admin/clients", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.Code)
	}
}

func TestClientTokenRejectedOnAdminRoutes(t *testing.T) {
	f := newFixture(t)
	f.seedClient("cliente001", "senha123", "Basic")

	token := f.clientLogin(t, "cliente001", "senha123")

	resp := f.request(t, http.MethodGet, "/api/v1/admin/clients", token, nil)
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for client token on admin route, got %d", resp.Code)
	}
}

func TestMasterOnlyClientCreate(t *testing.T) {
	f := newFixture(t)

	staffToken := f.login(t, "joao", "staff-pass")
	masterToken := f.login(t, "admin", "master-pass")

	payload := map[string]string{
		"id_luid":       "cliente001",
		"nome":          "Cliente Um",
		"senha_cliente": "senha123",
		"plano":         "Basic",
	}

	denied := f.request(t, http.MethodPost, "/api/v1/admin/clients", staffToken, payload)
	if denied.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-master create, got %d", denied.Code)
	}

	created := f.request(t, http.MethodPost, "/api/v1/admin/clients", masterToken, payload)
	if created.Code != http.StatusCreated {
		t.Errorf("Expected 201 for master create, got %d: %s", created.Code, created.Body.String())
	}

	// Non-master все одно бачить список
	listed := f.request(t, http.MethodGet, "/api/v1/admin/clients", staffToken, nil)
	if listed.Code != http.StatusOK {
		t.Errorf("Expected staff to read the client list, got %d", listed.Code)
	}
}

// Дублікат idLuid повертає 409 і не змінює попередній запис
func TestDuplicateClientCreate(t *testing.T) {
	f := newFixture(t)
	f.seedClient("cliente001", "original-pass", "Premium")

	masterToken := f.login(t, "admin", "master-pass")

	resp := f.request(t, http.MethodPost, "/api/v1/admin/clients", masterToken, map[string]string{
		"id_luid":       "cliente001",
		"nome":          "Impostor",
		"senha_cliente": "outra",
		"plano":         "Basic",
	})
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate id, got %d", resp.Code)
	}

	if f.clientRepo.records["cliente001"].Plano != "Premium" {
		t.Error("Prior record must stay unmodified after a duplicate create")
	}
}

func TestDeleteClientThenGetNotFound(t *testing.T) {
	f := newFixture(t)
	f.seedClient("cliente001", "senha123", "Basic")

	masterToken := f.login(t, "admin", "master-pass")

	deleted := f.request(t, http.MethodDelete, "/api/v1/admin/clients/cliente001", masterToken, nil)
	if deleted.Code != http.StatusOK {
		t.Fatalf("Expected 200 on delete, got %d", deleted.Code)
	}

	fetched := f.request(t, http.MethodGet, "/api/v1/admin/clients/cliente001", masterToken, nil)
	if fetched.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", fetched.Code)
	}
}

// Сценарій: майстер створює клієнта -> клієнт логіниться -> дешборд
// показує план і дефолтний online статус -> адмін ставить maintenance
// -> наступний poll клієнта бачить maintenance.
func TestVMStatusScenario(t *testing.T) {
	f := newFixture(t)

	masterToken := f.login(t, "admin", "master-pass")

	created := f.request(t, http.MethodPost, "/api/v1/admin/clients", masterToken, map[string]string{
		"id_luid":       "cliente001",
		"nome":          "Cliente Um",
		"senha_cliente": "senha123",
		"plano":         "Basic",
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("Create failed: %d", created.Code)
	}

	clientToken := f.clientLogin(t, "cliente001", "senha123")

	me := f.request(t, http.MethodGet, "/api/v1/portal/me", clientToken, nil)
	var record models.ClientRecord
	if err := json.Unmarshal(me.Body.Bytes(), &record); err != nil {
		t.Fatalf("Failed to decode record: %v", err)
	}
	if record.Plano != "Basic" || record.VMStatus != models.VMStatusOnline {
		t.Errorf("Expected Basic/online defaults, got %s/%s", record.Plano, record.VMStatus)
	}

	patched := f.request(t, http.MethodPatch, "/api/v1/admin/clients/cliente001/vm-status", masterToken, map[string]string{
		"vm_status": "maintenance",
	})
	if patched.Code != http.StatusOK {
		t.Fatalf("VM status update failed: %d", patched.Code)
	}

	refreshed := f.request(t, http.MethodGet, "/api/v1/portal/me", clientToken, nil)
	if err := json.Unmarshal(refreshed.Body.Bytes(), &record); err != nil {
		t.Fatalf("Failed to decode record: %v", err)
	}
	if record.VMStatus != models.VMStatusMaintenance {
		t.Errorf("Expected maintenance after admin update, got %s", record.VMStatus)
	}
}

func TestClientLoginWritesAccessLog(t *testing.T) {
	f := newFixture(t)
	f.seedClient("cliente001", "senha123", "Basic")

	f.clientLogin(t, "cliente001", "senha123")

	if len(f.accessLogs.logs) != 1 {
		t.Fatalf("Expected 1 access log entry, got %d", len(f.accessLogs.logs))
	}
	if f.accessLogs.logs[0].ClientID != "cliente001" {
		t.Errorf("Expected log for cliente001, got %s", f.accessLogs.logs[0].ClientID)
	}
	if f.accessLogs.logs[0].IPAddress == "" {
		t.Error("Access log must never hold an empty IP")
	}
}

func TestBootstrapMasterProtection(t *testing.T) {
	f := newFixture(t)

	masterToken := f.login(t, "admin", "master-pass")

	demoted := f.request(t, http.MethodPut, "/api/v1/admin/employees/admin", masterToken, map[string]string{
		"nome": "Administrator",
		"role": "employee",
	})
	if demoted.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for bootstrap master role change, got %d", demoted.Code)
	}

	deleted := f.request(t, http.MethodDelete, "/api/v1/admin/employees/admin", masterToken, nil)
	if deleted.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for bootstrap master delete, got %d", deleted.Code)
	}

	if _, exists := f.employeeRepo.employees["admin"]; !exists {
		t.Fatal("Bootstrap master must survive the delete attempt")
	}
	if f.employeeRepo.employees["admin"].Role != models.EmployeeRoleMaster {
		t.Error("Bootstrap master role must stay master")
	}
}

func TestAnnouncementLifecycle(t *testing.T) {
	f := newFixture(t)
	f.seedClient("cliente001", "senha123", "Basic")

	masterToken := f.login(t, "admin", "master-pass")
	clientToken := f.clientLogin(t, "cliente001", "senha123")

	set := f.request(t, http.MethodPut, "/api/v1/admin/announcement", masterToken, map[string]string{
		"announcement": "Manutenção às 22h",
	})
	if set.Code != http.StatusOK {
		t.Fatalf("Set announcement failed: %d", set.Code)
	}

	var resp struct {
		Announcement string `json:"announcement"`
	}

	get := f.request(t, http.MethodGet, "/api/v1/portal/announcement", clientToken, nil)
	if err := json.Unmarshal(get.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode announcement: %v", err)
	}
	if resp.Announcement != "Manutenção às 22h" {
		t.Errorf("Expected announcement visible to any client, got %q", resp.Announcement)
	}

	cleared := f.request(t, http.MethodDelete, "/api/v1/admin/announcement", masterToken, nil)
	if cleared.Code != http.StatusOK {
		t.Fatalf("Clear announcement failed: %d", cleared.Code)
	}

	get = f.request(t, http.MethodGet, "/api/v1/portal/announcement", clientToken, nil)
	if err := json.Unmarshal(get.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode announcement: %v", err)
	}
	if resp.Announcement != "" {
		t.Errorf("Expected empty announcement after clear, got %q", resp.Announcement)
	}
}

// Коли чат offline, відправка відхиляється сховищем, але історія
// залишається читабельною
func TestChatOfflineGating(t *testing.T) {
	f := newFixture(t)
	f.seedClient("cliente001", "senha123", "Basic")
	f.chatRepo.byClient["cliente001"] = []*models.ChatMessage{
		{ClientID: "cliente001", Sender: models.OperatorIdentity, Receiver: "cliente001", Message: "Olá"},
	}
	f.settingsRepo.chatStatus = models.ChatSystemOffline

	clientToken := f.clientLogin(t, "cliente001", "senha123")

	sent := f.request(t, http.MethodPost, "/api/v1/portal/chat", clientToken, map[string]string{
		"message": "alguém aí?",
	})
	if sent.Code != http.StatusForbidden {
		t.Errorf("Expected 403 when chat is offline, got %d", sent.Code)
	}

	history := f.request(t, http.MethodGet, "/api/v1/portal/chat", clientToken, nil)
	if history.Code != http.StatusOK {
		t.Errorf("Expected history readable while offline, got %d", history.Code)
	}

	var messages []*models.ChatMessage
	if err := json.Unmarshal(history.Body.Bytes(), &messages); err != nil {
		t.Fatalf("Failed to decode history: %v", err)
	}
	if len(messages) != 1 {
		t.Errorf("Expected 1 message in history, got %d", len(messages))
	}
}

func TestOperatorSendUsesReservedIdentity(t *testing.T) {
	f := newFixture(t)
	f.seedClient("cliente001", "senha123", "Basic")

	staffToken := f.login(t, "joao", "staff-pass")

	sent := f.request(t, http.MethodPost, "/api/v1/admin/clients/cliente001/chat", staffToken, map[string]string{
		"message": "Como posso ajudar?",
	})
	if sent.Code != http.StatusCreated {
		t.Fatalf("Operator send failed: %d", sent.Code)
	}

	messages := f.chatRepo.byClient["cliente001"]
	if len(messages) != 1 {
		t.Fatalf("Expected 1 stored message, got %d", len(messages))
	}
	if messages[0].Sender != models.OperatorIdentity {
		t.Errorf("Expected reserved operator sender, got %s", messages[0].Sender)
	}
}

// operating_system валідується так само як vm_status: довільний
// рядок не потрапляє в сховище
func TestInvalidOperatingSystemRejected(t *testing.T) {
	f := newFixture(t)

	masterToken := f.login(t, "admin", "master-pass")

	payload := map[string]string{
		"id_luid":          "cliente001",
		"nome":             "Cliente Um",
		"operating_system": "templeos",
	}

	rejected := f.request(t, http.MethodPost, "/api/v1/admin/clients", masterToken, payload)
	if rejected.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid operating_system, got %d", rejected.Code)
	}

	payload["operating_system"] = "ubuntu"
	created := f.request(t, http.MethodPost, "/api/v1/admin/clients", masterToken, payload)
	if created.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for valid operating_system, got %d: %s", created.Code, created.Body.String())
	}

	payload["operating_system"] = "debian"
	updated := f.request(t, http.MethodPut, "/api/v1/admin/clients/cliente001", masterToken, payload)
	if updated.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid operating_system on update, got %d", updated.Code)
	}
}
