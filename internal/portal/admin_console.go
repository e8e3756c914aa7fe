package portal

import (
	"context"
	"time"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// AdminConsole операторський view адмін панелі: список клієнтів та
// співробітників опитуються за фіксованим інтервалом, мутації
// інвалідують відповідний список. Мутаційні операції доступні лише
// сесії з роллю master - non-master отримує ErrForbidden від сховища.
type AdminConsole struct {
	backend *Backend
	auth    *AdminAuth

	clients   *Query[[]*models.ClientRecord]
	employees *Query[[]*EmployeeProfile]
}

// NewAdminConsole створює операторський view
func NewAdminConsole(backend *Backend, auth *AdminAuth, pollInterval time.Duration) *AdminConsole {
	c := &AdminConsole{
		backend: backend,
		auth:    auth,
	}

	c.clients = NewQuery("clients", pollInterval, func(ctx context.Context) ([]*models.ClientRecord, error) {
		token := auth.Token()
		if token == "" {
			return nil, ErrNotAuthenticated
		}
		return backend.GetAllClientRecords(ctx, token)
	})

	c.employees = NewQuery("employees", pollInterval, func(ctx context.Context) ([]*EmployeeProfile, error) {
		token := auth.Token()
		if token == "" {
			return nil, ErrNotAuthenticated
		}
		return backend.GetAllEmployees(ctx, token)
	})

	auth.BindCache(c.clients)
	auth.BindCache(c.employees)

	return c
}

// Start запускає polling списків
func (c *AdminConsole) Start() {
	c.clients.Start()
	c.employees.Start()
}

// Stop зупиняє polling
func (c *AdminConsole) Stop() {
	c.clients.Stop()
	c.employees.Stop()
}

// Clients повертає закешований список клієнтів
func (c *AdminConsole) Clients() []*models.ClientRecord {
	clients, _ := c.clients.Get()
	return clients
}

// Employees повертає закешований список співробітників
func (c *AdminConsole) Employees() []*EmployeeProfile {
	employees, _ := c.employees.Get()
	return employees
}

// CreateClient створює запис клієнта. Дублікат idLuid повертає
// ErrDuplicateID, попередній запис не змінюється - стан форми
// зберігається для виправлення.
func (c *AdminConsole) CreateClient(ctx context.Context, input *ClientRecordInput) (*models.ClientRecord, error) {
	token := c.auth.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	record, err := c.backend.CreateClientRecord(ctx, token, input)
	if err != nil {
		return nil, err
	}

	c.clients.Invalidate()
	return record, nil
}

// UpdateClient оновлює запис клієнта
func (c *AdminConsole) UpdateClient(ctx context.Context, idLuid string, input *ClientRecordInput) (*models.ClientRecord, error) {
	token := c.auth.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	record, err := c.backend.UpdateClientRecord(ctx, token, idLuid, input)
	if err != nil {
		return nil, err
	}

	c.clients.Invalidate()
	return record, nil
}

// SetVMStatus частково оновлює лише VM статус. Швидкі повторні
// перемикання не чергуються і не коалесуються - остання відповідь
// що прилетіла перемагає.
func (c *AdminConsole) SetVMStatus(ctx context.Context, idLuid, status string) error {
	token := c.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	if err := c.backend.UpdateVMStatus(ctx, token, idLuid, status); err != nil {
		return err
	}

	c.clients.Invalidate()
	return nil
}

// DeleteClient видаляє запис клієнта незворотньо
func (c *AdminConsole) DeleteClient(ctx context.Context, idLuid string) error {
	token := c.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	if err := c.backend.DeleteClientRecord(ctx, token, idLuid); err != nil {
		return err
	}

	c.clients.Invalidate()
	return nil
}

// CreateEmployee створює співробітника (лише master)
func (c *AdminConsole) CreateEmployee(ctx context.Context, input *EmployeeInput) error {
	token := c.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	if err := c.backend.CreateEmployee(ctx, token, input); err != nil {
		return err
	}

	c.employees.Invalidate()
	return nil
}

// UpdateEmployee оновлює співробітника. Зміна ролі bootstrap master
// відхиляється сховищем.
func (c *AdminConsole) UpdateEmployee(ctx context.Context, employeeID string, input *EmployeeInput) error {
	token := c.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	if err := c.backend.UpdateEmployee(ctx, token, employeeID, input); err != nil {
		return err
	}

	c.employees.Invalidate()
	return nil
}

// DeleteEmployee видаляє співробітника. Bootstrap master захищений
// сховищем.
func (c *AdminConsole) DeleteEmployee(ctx context.Context, employeeID string) error {
	token := c.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	if err := c.backend.DeleteEmployee(ctx, token, employeeID); err != nil {
		return err
	}

	c.employees.Invalidate()
	return nil
}

// SendOperatorMessage відправляє повідомлення клієнту від оператора
func (c *AdminConsole) SendOperatorMessage(ctx context.Context, idLuid, message string) error {
	token := c.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	_, err := c.backend.SendOperatorMessage(ctx, token, idLuid, message)
	return err
}

// NotifyClient додає повідомлення в інбокс клієнта
func (c *AdminConsole) NotifyClient(ctx context.Context, idLuid, message string) error {
	token := c.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}
	return c.backend.AddNotification(ctx, token, idLuid, message)
}

// SetAnnouncement встановлює глобальний анонс
func (c *AdminConsole) SetAnnouncement(ctx context.Context, announcement string) error {
	token := c.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}
	return c.backend.SetGlobalAnnouncement(ctx, token, announcement)
}

// ClearAnnouncement прибирає глобальний анонс
func (c *AdminConsole) ClearAnnouncement(ctx context.Context) error {
	token := c.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}
	return c.backend.ClearGlobalAnnouncement(ctx, token)
}
