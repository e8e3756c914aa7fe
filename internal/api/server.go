package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/auth"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/handlers"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/middleware"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/api/push"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/config"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/events"
	"github.com/caffeinepub/luidcorporation-dashboard-ecosystem/internal/repository"
)

// Server представляє HTTP сервер панелі
type Server struct {
	config     *config.Config
	httpServer *http.Server
	router     *mux.Router

	// Repositories
	clientRepo    repository.ClientRepository
	employeeRepo  repository.EmployeeRepository
	notifRepo     repository.NotificationRepository
	chatRepo      repository.ChatRepository
	accessLogRepo repository.AccessLogRepository
	settingsRepo  repository.SettingsRepository

	// Auth & Middleware
	jwtManager  *auth.JWTManager
	rateLimiter *middleware.RateLimiter

	// Push & Events
	hub       *push.Hub
	publisher *events.Publisher

	// Handlers
	healthHandler       *handlers.HealthHandler
	authHandler         *handlers.AuthHandler
	clientAuthHandler   *handlers.ClientAuthHandler
	clientHandler       *handlers.ClientHandler
	employeeHandler     *handlers.EmployeeHandler
	notifHandler        *handlers.NotificationHandler
	chatHandler         *handlers.ChatHandler
	announcementHandler *handlers.AnnouncementHandler
	systemHandler       *handlers.SystemHandler
	accessLogHandler    *handlers.AccessLogHandler
	pushHandler         *push.Handler
}

// NewServer створює новий сервер панелі
func NewServer(
	cfg *config.Config,
	clientRepo repository.ClientRepository,
	employeeRepo repository.EmployeeRepository,
	notifRepo repository.NotificationRepository,
	chatRepo repository.ChatRepository,
	accessLogRepo repository.AccessLogRepository,
	settingsRepo repository.SettingsRepository,
	publisher *events.Publisher,
) *Server {
	s := &Server{
		config:        cfg,
		clientRepo:    clientRepo,
		employeeRepo:  employeeRepo,
		notifRepo:     notifRepo,
		chatRepo:      chatRepo,
		accessLogRepo: accessLogRepo,
		settingsRepo:  settingsRepo,
		publisher:     publisher,
	}

	// Initialize JWT Manager
	s.jwtManager = auth.NewJWTManager(cfg.Server.JWTSecret, 24*time.Hour)

	// Initialize Rate Limiter
	s.rateLimiter = middleware.NewRateLimiter(cfg.Server.RateLimit)

	// Initialize push hub
	s.hub = push.NewHub()
	go s.hub.Run()

	// Initialize handlers
	s.healthHandler = handlers.NewHealthHandler()
	s.authHandler = handlers.NewAuthHandler(employeeRepo, s.jwtManager)
	s.clientAuthHandler = handlers.NewClientAuthHandler(clientRepo, accessLogRepo, s.jwtManager, publisher)
	s.clientHandler = handlers.NewClientHandler(clientRepo, publisher, s.hub)
	s.employeeHandler = handlers.NewEmployeeHandler(employeeRepo)
	s.notifHandler = handlers.NewNotificationHandler(notifRepo, s.hub)
	s.chatHandler = handlers.NewChatHandler(chatRepo, settingsRepo, publisher, s.hub)
	s.announcementHandler = handlers.NewAnnouncementHandler(settingsRepo, s.hub)
	s.systemHandler = handlers.NewSystemHandler(clientRepo, employeeRepo, settingsRepo, s.hub)
	s.accessLogHandler = handlers.NewAccessLogHandler(accessLogRepo)
	s.pushHandler = push.NewHandler(s.hub, s.jwtManager, cfg.Server.AllowedOrigins)

	// Setup router
	s.setupRouter()

	return s
}

// setupRouter налаштовує всі роути та middleware
func (s *Server) setupRouter() {
	r := mux.NewRouter()

	// Global middleware
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.CORSMiddleware(s.config.Server.AllowedOrigins))
	r.Use(s.rateLimiter.RateLimitMiddleware)

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// ========== Public routes (no auth required) ==========

	api.HandleFunc("/health", s.healthHandler.Health).Methods("GET")
	api.HandleFunc("/ping", s.healthHandler.Ping).Methods("GET")

	// Authentication
	api.HandleFunc("/auth/admin/login", s.authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/admin/refresh", s.authHandler.RefreshToken).Methods("POST")
	api.HandleFunc("/auth/client/login", s.clientAuthHandler.Login).Methods("POST")

	// WebSocket push (токен клієнта в query параметрі)
	api.HandleFunc("/ws", s.pushHandler.ServeWS).Methods("GET")

	// ========== Admin routes (require staff JWT) ==========

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.JWTAuthMiddleware(s.jwtManager))
	admin.Use(middleware.RequireAdminStaff)

	admin.HandleFunc("/auth/logout", s.authHandler.Logout).Methods("POST")
	admin.HandleFunc("/auth/me", s.authHandler.Me).Methods("GET")

	// Перегляд доступний всім співробітникам
	admin.HandleFunc("/clients", s.clientHandler.List).Methods("GET")
	admin.HandleFunc("/clients/{idLuid}", s.clientHandler.Get).Methods("GET")
	admin.HandleFunc("/clients/{idLuid}/vm-status", s.clientHandler.UpdateVMStatus).Methods("PATCH")
	admin.HandleFunc("/clients/{idLuid}/notifications", s.notifHandler.ListForClient).Methods("GET")
	admin.HandleFunc("/clients/{idLuid}/notifications", s.notifHandler.Add).Methods("POST")
	admin.HandleFunc("/clients/{idLuid}/notifications", s.notifHandler.Clear).Methods("DELETE")
	admin.HandleFunc("/clients/{idLuid}/chat", s.chatHandler.Conversation).Methods("GET")
	admin.HandleFunc("/clients/{idLuid}/chat", s.chatHandler.OperatorSend).Methods("POST")
	admin.HandleFunc("/clients/{idLuid}/chat", s.chatHandler.ClearConversation).Methods("DELETE")
	admin.HandleFunc("/clients/{idLuid}/access-logs", s.accessLogHandler.ListForClient).Methods("GET")
	admin.HandleFunc("/employees", s.employeeHandler.List).Methods("GET")
	admin.HandleFunc("/announcement", s.announcementHandler.Get).Methods("GET")
	admin.HandleFunc("/announcement", s.announcementHandler.Set).Methods("PUT")
	admin.HandleFunc("/announcement", s.announcementHandler.Clear).Methods("DELETE")
	admin.HandleFunc("/settings/chat-status", s.chatHandler.ChatStatus).Methods("GET")
	admin.HandleFunc("/settings/chat-status", s.chatHandler.SetChatStatus).Methods("PUT")
	admin.HandleFunc("/settings/network-monitoring", s.systemHandler.NetworkMonitoringStatus).Methods("GET")
	admin.HandleFunc("/settings/network-monitoring", s.systemHandler.SetNetworkMonitoringStatus).Methods("PUT")
	admin.HandleFunc("/access-logs", s.accessLogHandler.List).Methods("GET")
	admin.HandleFunc("/stats/dashboard", s.systemHandler.Dashboard).Methods("GET")

	// Мутації записів лише для master
	master := admin.PathPrefix("").Subrouter()
	master.Use(middleware.RequireMaster)
	master.HandleFunc("/clients", s.clientHandler.Create).Methods("POST")
	master.HandleFunc("/clients/{idLuid}", s.clientHandler.Update).Methods("PUT")
	master.HandleFunc("/clients/{idLuid}", s.clientHandler.Delete).Methods("DELETE")
	master.HandleFunc("/employees", s.employeeHandler.Create).Methods("POST")
	master.HandleFunc("/employees/{employeeId}", s.employeeHandler.Update).Methods("PUT")
	master.HandleFunc("/employees/{employeeId}", s.employeeHandler.Delete).Methods("DELETE")

	// ========== Portal routes (require client JWT) ==========

	portal := api.PathPrefix("/portal").Subrouter()
	portal.Use(middleware.JWTAuthMiddleware(s.jwtManager))
	portal.Use(middleware.RequireClient)

	portal.HandleFunc("/me", s.clientAuthHandler.Me).Methods("GET")
	portal.HandleFunc("/notifications", s.notifHandler.ListOwn).Methods("GET")
	portal.HandleFunc("/notifications", s.notifHandler.ClearOwn).Methods("DELETE")
	portal.HandleFunc("/chat", s.chatHandler.OwnConversation).Methods("GET")
	portal.HandleFunc("/chat", s.chatHandler.ClientSend).Methods("POST")
	portal.HandleFunc("/chat-status", s.chatHandler.ChatStatus).Methods("GET")
	portal.HandleFunc("/announcement", s.announcementHandler.Get).Methods("GET")
	portal.HandleFunc("/network-monitoring", s.systemHandler.NetworkMonitoringStatus).Methods("GET")

	s.router = r
}

// Start запускає HTTP сервер
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("🚀 Panel API server starting on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop зупиняє HTTP сервер gracefully
func (s *Server) Stop(ctx context.Context) error {
	log.Println("🛑 Shutting down panel API server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("✅ Panel API server stopped")
	return nil
}

// Router повертає router для тестування
func (s *Server) Router() *mux.Router {
	return s.router
}
