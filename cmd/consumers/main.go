package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"busenjoyer/cmd/consumers/jobs"
	"busenjoyer/internal/config"
	"busenjoyer/internal/consumers"
	"busenjoyer/internal/database"
	"busenjoyer/internal/logger"
	"busenjoyer/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env file: %v", err)
	}

	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Override NATS client ID for consumers
	cfg.NATS.ClientID = "busenjoyer-consumers"

	// Create and start consumers
	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		log.Fatalf("Failed to create consumer service: %v", err)
	}

	// Start consuming messages
	if err := consumerService.Start(); err != nil {
		log.Fatalf("Failed to start consumers: %v", err)
	}

	// The audit job runs on its own database connection so it keeps working
	// even if the consumer service is busy
	auditDB, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect audit database: %v", err)
	}
	defer auditDB.Close()

	auditJob := jobs.NewCapacityAuditJob(repository.NewTicketRepository(auditDB))
	auditJob.Start(context.Background())

	log.Println("Consumers service started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down consumers service...")

	auditJob.Stop()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Consumers service stopped")
}
