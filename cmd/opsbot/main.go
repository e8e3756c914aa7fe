package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/config"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/events"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/opsbot"
)

func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.App.Environment == "development" {
		log.Printf("Config loaded:\n%s", cfg.SafeString())
	}

	if cfg.Telegram.BotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required for the ops bot")
	}

	redisClient, err := events.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if redisClient == nil {
		log.Fatal("Redis is required for the ops bot (REDIS_HOST not configured)")
	}
	defer events.CloseRedisClient(redisClient)
	log.Println("✅ Redis connected")

	bot, err := opsbot.NewBot(cfg, redisClient)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := bot.Start(ctx); err != nil {
			log.Fatalf("Bot error: %v", err)
		}
	}()

	log.Println("✅ Ops bot started successfully!")
	log.Println("Press Ctrl+C to stop...")

	<-quit

	log.Println("🛑 Shutting down ops bot...")
	cancel()
	log.Println("👋 Ops bot stopped")
}
