package portal

import (
	"context"
	"time"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/models"
)

// Dashboard клієнтський дешборд: інбокс повідомлень та глобальний
// анонс, кожен зі своїм polling інтервалом. Мутації (очищення
// інбоксу) інвалідують відповідний запит замість оптимістичного
// патчання кешу.
type Dashboard struct {
	backend *Backend
	auth    *ClientAuth

	notifications *Query[[]*models.Notification]
	announcement  *Query[string]
}

// NewDashboard створює дешборд поточного клієнта порталу
func NewDashboard(backend *Backend, auth *ClientAuth, notifInterval, announcementInterval time.Duration) *Dashboard {
	d := &Dashboard{
		backend: backend,
		auth:    auth,
	}

	d.notifications = NewQuery("notifications", notifInterval, func(ctx context.Context) ([]*models.Notification, error) {
		token := auth.Token()
		if token == "" {
			return nil, ErrNotAuthenticated
		}
		return backend.GetNotifications(ctx, token)
	})

	d.announcement = NewQuery("announcement", announcementInterval, func(ctx context.Context) (string, error) {
		token := auth.Token()
		if token == "" {
			return "", ErrNotAuthenticated
		}
		return backend.GetGlobalAnnouncement(ctx, token, false)
	})

	auth.BindCache(d.notifications)
	auth.BindCache(d.announcement)

	return d
}

// Start запускає polling інбоксу та анонсу
func (d *Dashboard) Start() {
	d.notifications.Start()
	d.announcement.Start()
}

// Stop зупиняє polling
func (d *Dashboard) Stop() {
	d.notifications.Stop()
	d.announcement.Stop()
}

// Notifications повертає закешований інбокс клієнта
func (d *Dashboard) Notifications() []*models.Notification {
	notifications, _ := d.notifications.Get()
	return notifications
}

// Announcement повертає поточний анонс; порожній рядок - банер
// не показується
func (d *Dashboard) Announcement() string {
	announcement, _ := d.announcement.Get()
	return announcement
}

// ClearNotifications очищає інбокс та інвалідує запит
func (d *Dashboard) ClearNotifications(ctx context.Context) error {
	token := d.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	if err := d.backend.ClearNotifications(ctx, token); err != nil {
		return err
	}

	d.notifications.Invalidate()
	return nil
}
