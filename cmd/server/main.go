package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyplanner-backend/internal/config"
	"studyplanner-backend/internal/database"
	"studyplanner-backend/internal/events"
	"studyplanner-backend/internal/handlers"
	"studyplanner-backend/internal/repository"
	"studyplanner-backend/internal/router"
	"studyplanner-backend/internal/services"
	"studyplanner-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Study Planner Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	resourceRepo := repository.NewResourceRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)

	// ──── Initialize Services ────
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	publisher := events.NewPublisher(redisClients.Publish)

	// ──── Initialize Handlers ────
	resourceHandler := handlers.NewResourceHandler(resourceRepo, publisher)
	sessionHandler := handlers.NewSessionHandler(sessionRepo, publisher)
	dashboardHandler := handlers.NewDashboardHandler(sessionRepo)

	// ──── Step 5: Start Reminder Scheduler ────
	reminderScheduler := services.NewReminderScheduler(
		sessionRepo,
		emailService,
		publisher,
		cfg.ReminderRecipient,
		cfg.ReminderInterval,
		cfg.ReminderLookahead,
	)
	reminderScheduler.Start()

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.Subscribe)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		resourceHandler,
		sessionHandler,
		dashboardHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		reminderScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Study Planner Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  WS: ws://localhost:%s/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
