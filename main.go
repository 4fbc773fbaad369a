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

	"github.com/ipquest/ipquest-be/internal/api"
	"github.com/ipquest/ipquest-be/internal/auth"
	"github.com/ipquest/ipquest-be/internal/config"
	"github.com/ipquest/ipquest-be/internal/database"
	"github.com/ipquest/ipquest-be/internal/logger"
	"github.com/ipquest/ipquest-be/internal/mail"
	"github.com/ipquest/ipquest-be/internal/maintenance"
	"github.com/ipquest/ipquest-be/internal/services"
	"github.com/ipquest/ipquest-be/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up token signing and the mail notifier
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTokenTTL, cfg.ResetTokenTTL)
	mailer := mail.New(mail.Config{
		APIKey:    cfg.MailAPIKey,
		BaseURL:   cfg.MailBaseURL,
		FromEmail: cfg.MailFromEmail,
		FromName:  cfg.MailFromName,
	})

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(db, tokens, mailer, cfg.ResetBaseURL, cfg.ResetTokenTTL)
	progressService := services.NewProgressService(db, hub)
	leaderboardService := services.NewLeaderboardService(db)

	// Set up and run the background reset-token sweeper
	sweeper, err := maintenance.NewSweeper(userService, cfg.CleanupSchedule)
	if err != nil {
		log.Fatalf("Failed to initialize sweeper: %v", err)
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(tokens, hub, cfg.AllowedOrigins, userService, progressService, leaderboardService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
