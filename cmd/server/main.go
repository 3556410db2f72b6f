package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stabtrack/stability-app/internal/api"
	"stabtrack/stability-app/internal/config"
	"stabtrack/stability-app/internal/repository/mongo"
	"stabtrack/stability-app/internal/service"
	"stabtrack/stability-app/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Stability App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureProductIndexes(ctx, appDB.Collection("products"))
		mongo.EnsureTaskIndexes(ctx, appDB.Collection("tasks"))
		mongo.EnsureScheduleTemplateIndexes(ctx, appDB.Collection("schedule_templates"))
		mongo.EnsureFTCycleTemplateIndexes(ctx, appDB.Collection("ft_cycle_templates"))
		mongo.EnsureAttachmentIndexes(ctx, appDB.Collection("attachments"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	productRepo := mongo.NewMongoProductRepository(appDB)
	taskRepo := mongo.NewMongoTaskRepository(appDB)
	scheduleTemplateRepo := mongo.NewMongoScheduleTemplateRepository(appDB)
	ftCycleTemplateRepo := mongo.NewMongoFTCycleTemplateRepository(appDB)
	attachmentRepo := mongo.NewMongoAttachmentRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	productService := service.NewProductService(productRepo, taskRepo, scheduleTemplateRepo, ftCycleTemplateRepo)
	taskService := service.NewTaskService(taskRepo)
	templateService := service.NewTemplateService(scheduleTemplateRepo, ftCycleTemplateRepo, productRepo)
	attachmentService := service.NewAttachmentService(attachmentRepo, taskRepo, fileStorage)

	// --- Seed Presets ---
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := templateService.SeedPresets(seedCtx); err != nil {
		seedCancel()
		log.Fatalf("FATAL: Failed to seed preset templates: %v", err)
	}
	seedCancel()
	log.Println("Preset templates verified.")

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, productService, taskService, templateService, attachmentService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
