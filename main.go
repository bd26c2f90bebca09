package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thecoder877/Vrticko/config"
	"github.com/thecoder877/Vrticko/database"
	"github.com/thecoder877/Vrticko/handlers"
	"github.com/thecoder877/Vrticko/middleware"
	"github.com/thecoder877/Vrticko/models"
	"github.com/thecoder877/Vrticko/services"
	"github.com/thecoder877/Vrticko/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
		log.Fatalf("❌ MongoDB connection failed: %v", err)
	}
	defer database.Close()

	// Repositories
	userRepo := database.NewUserRepository(database.DB)
	subscriptionRepo := database.NewSubscriptionRepository(database.DB)
	notificationRepo := database.NewNotificationRepository(database.DB)
	recipientRepo := database.NewRecipientRepository(database.DB)

	// Realtime feed
	hub := websocket.NewHub(recipientRepo)
	go hub.Run()

	// Services
	profileCache := services.NewProfileCache(userRepo.FindByID, 5*time.Minute)
	resolver := services.NewAudienceResolver(userRepo)
	pushService := services.NewPushService(subscriptionRepo, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject, cfg.PushDispatchTimeout, cfg.PushMaxConcurrent)
	notificationService := services.NewNotificationService(notificationRepo, resolver, pushService, hub, cfg.DedupWindow)
	slackService := services.NewSlackService(cfg.SlackWebhookURL)

	// Purge soft-deleted rows after 90 days
	maintenance := services.NewMaintenanceCron(recipientRepo, 90*24*time.Hour)
	maintenance.Start()
	defer maintenance.Stop()

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, profileCache, cfg.JWTSecret)
	notificationHandler := handlers.NewNotificationHandler(notificationService, notificationRepo, recipientRepo, hub)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionRepo, profileCache, cfg.VAPIDPublicKey)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(slackService))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	router.HandleFunc("/api/health", handlers.HealthCheck).Methods(http.MethodGet, http.MethodOptions)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods(http.MethodPost, http.MethodOptions)

	// Authenticated routes
	auth := middleware.AuthMiddleware(cfg.JWTSecret)
	staffOnly := middleware.RequireRole(profileCache, models.RoleAdmin, models.RoleTeacher)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth)

	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost, http.MethodOptions)

	api.Handle("/notifications", staffOnly(http.HandlerFunc(notificationHandler.Create))).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/unread-count", notificationHandler.UnreadCount).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/notifications/read-all", notificationHandler.MarkAllRead).Methods(http.MethodPatch, http.MethodOptions)
	api.HandleFunc("/notifications/{id}/read", notificationHandler.MarkRead).Methods(http.MethodPatch, http.MethodOptions)
	api.HandleFunc("/notifications/{id}", notificationHandler.Delete).Methods(http.MethodDelete, http.MethodOptions)

	api.HandleFunc("/push/vapid-public-key", subscriptionHandler.VAPIDPublicKey).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/push/subscribe", subscriptionHandler.Subscribe).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/push/unsubscribe", subscriptionHandler.Unsubscribe).Methods(http.MethodPost, http.MethodOptions)

	// The feed socket authenticates in-band with its first message
	router.HandleFunc("/ws/feed", websocket.ServeWS(hub, cfg.JWTSecret))

	// Must outlast PushDispatchTimeout: create-notification responds only
	// after dispatch settles
	writeTimeout := cfg.PushDispatchTimeout + 30*time.Second

	addr := cfg.Host + ":" + cfg.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server listening on %s (env: %s)", addr, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⚠️  Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Shutdown()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Forced shutdown: %v", err)
	}

	log.Println("✓ Server stopped")
}
