package maintenance

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/config"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

// Scheduler відповідає за автоматичне обслуговування даних панелі
type Scheduler struct {
	cron          *cron.Cron
	clientRepo    repository.ClientRepository
	notifRepo     repository.NotificationRepository
	accessLogRepo repository.AccessLogRepository
	config        config.MaintenanceConfig
}

// NewScheduler створює новий Maintenance Scheduler
func NewScheduler(
	clientRepo repository.ClientRepository,
	notifRepo repository.NotificationRepository,
	accessLogRepo repository.AccessLogRepository,
	cfg config.MaintenanceConfig,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		clientRepo:    clientRepo,
		notifRepo:     notifRepo,
		accessLogRepo: accessLogRepo,
		config:        cfg,
	}
}

// Start запускає maintenance scheduler
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.RunMaintenance()
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("✅ Maintenance scheduler started (schedule: %s)", s.config.Schedule)

	return nil
}

// Stop зупиняє maintenance scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Maintenance scheduler stopped")
}

// RunMaintenance виконує всі maintenance операції
func (s *Scheduler) RunMaintenance() {
	startTime := time.Now()
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🧹 Maintenance Job Started")
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// 1. Cleanup старих access logs
	s.cleanupAccessLogs()

	// 2. Cleanup старих notifications
	s.cleanupNotifications()

	// 3. Попередження про закінчення плану
	s.warnExpiringPlans()

	elapsed := time.Since(startTime)
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("✅ Maintenance completed in %v", elapsed)
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

// cleanupAccessLogs видаляє старі записи аудиту логінів
func (s *Scheduler) cleanupAccessLogs() {
	log.Printf("🗑️  Cleaning up access logs older than %d days...", s.config.AccessLogRetentionDays)

	deleted, err := s.accessLogRepo.DeleteOlderThanDays(s.config.AccessLogRetentionDays)
	if err != nil {
		log.Printf("❌ Failed to cleanup access logs: %v", err)
		return
	}

	log.Printf("✅ Access logs cleanup completed (%d removed)", deleted)
}

// cleanupNotifications видаляє старі notifications
func (s *Scheduler) cleanupNotifications() {
	log.Printf("🗑️  Cleaning up notifications older than %d days...", s.config.NotificationRetentionDays)

	deleted, err := s.notifRepo.DeleteOlderThanDays(s.config.NotificationRetentionDays)
	if err != nil {
		log.Printf("❌ Failed to cleanup notifications: %v", err)
		return
	}

	log.Printf("✅ Notifications cleanup completed (%d removed)", deleted)
}

// warnExpiringPlans створює notification для клієнтів чий план скоро закінчується
func (s *Scheduler) warnExpiringPlans() {
	log.Printf("📋 Scanning for plans expiring within %d days...", s.config.PlanExpiryWarnDays)

	clients, err := s.clientRepo.ListExpiringWithin(s.config.PlanExpiryWarnDays)
	if err != nil {
		log.Printf("❌ Failed to list expiring plans: %v", err)
		return
	}

	warned := 0
	for _, client := range clients {
		if client.PlanExpiry == nil {
			continue
		}

		message := fmt.Sprintf(
			"Seu plano %s expira em %s. Entre em contato com o suporte para renovar.",
			client.Plano,
			client.PlanExpiry.Format("02/01/2006"),
		)

		// Текст містить дату закінчення: повторний нічний прогін не
		// дублює попередження, а зміна дати плану нотифікує знову
		exists, err := s.notifRepo.HasMessage(client.IDLuid, message)
		if err != nil {
			log.Printf("⚠️  Failed to check existing warning for %s: %v", client.IDLuid, err)
			continue
		}
		if exists {
			continue
		}

		if err := s.notifRepo.Add(client.IDLuid, message); err != nil {
			log.Printf("⚠️  Failed to notify %s about plan expiry: %v", client.IDLuid, err)
			continue
		}
		warned++
	}

	log.Printf("✅ Plan expiry scan completed (%d clients warned)", warned)
}

// RunNow запускає maintenance негайно (для тестування)
func (s *Scheduler) RunNow() {
	s.RunMaintenance()
}
