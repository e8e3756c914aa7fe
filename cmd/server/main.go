package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/config"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/events"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/maintenance"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("🚀 Starting LUID Panel API...")
	log.Printf("Environment: %s", cfg.App.Environment)

	// Database connection
	db, err := repository.InitDatabase(cfg.Database, cfg.App)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connected")

	// Auto-migrate panel tables
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}
	log.Println("✅ Tables migrated")

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	accessLogRepo := repository.NewAccessLogRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Initialize Redis (optional for development, required for production)
	redisClient, err := events.NewRedisClient(cfg.Redis)
	if err != nil && cfg.App.Environment == "production" {
		log.Fatalf("❌ Failed to connect to Redis (required in production): %v", err)
	}
	if redisClient != nil {
		defer events.CloseRedisClient(redisClient)
		log.Println("✅ Redis connected")
	} else {
		log.Println("⚠️  Redis not available - operator alerts will be disabled")
	}

	publisher := events.NewPublisher(redisClient)

	// Create bootstrap master if environment variables are set
	if employeeID := os.Getenv("ADMIN_DEFAULT_ID"); employeeID != "" {
		password := os.Getenv("ADMIN_DEFAULT_PASSWORD")
		nome := os.Getenv("ADMIN_DEFAULT_NAME")

		if password != "" {
			if nome == "" {
				nome = "Administrator"
			}
			if err := repository.CreateBootstrapMaster(db, employeeID, password, nome); err != nil {
				log.Printf("⚠️ Could not create bootstrap master: %v", err)
			} else {
				log.Printf("✅ Bootstrap master ensured: %s", employeeID)
			}
		}
	}

	// Start maintenance scheduler
	scheduler := maintenance.NewScheduler(clientRepo, notifRepo, accessLogRepo, cfg.Maintenance)
	if err := scheduler.Start(); err != nil {
		log.Printf("⚠️  Failed to start maintenance scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create API server
	server := api.NewServer(
		cfg,
		clientRepo,
		employeeRepo,
		notifRepo,
		chatRepo,
		accessLogRepo,
		settingsRepo,
		publisher,
	)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Println("✅ Panel API server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down Panel API...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("⚠️  Server shutdown error: %v", err)
	}

	if err := repository.CloseDatabase(db); err != nil {
		log.Printf("⚠️  Database close error: %v", err)
	}

	log.Println("👋 Panel API stopped")
}
