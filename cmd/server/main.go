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

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron"

	"atleta/training-diary/internal/api"
	"atleta/training-diary/internal/config"
	"atleta/training-diary/internal/repository/mongo"
	"atleta/training-diary/internal/service"
	"atleta/training-diary/internal/storage"
)

func main() {
	log.Println("Starting Training Diary Server...")

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
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsurePeriodIndexes(ctx, appDB.Collection("periods"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("training_sessions"))
		mongo.EnsureSnapshotIndexes(ctx, appDB.Collection("workload_snapshots"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	periodRepo := mongo.NewMongoPeriodRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	snapshotRepo := mongo.NewMongoSnapshotRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	periodService := service.NewPeriodService(periodRepo)
	sessionService := service.NewSessionService(sessionRepo)
	workloadService := service.NewWorkloadService(sessionRepo, snapshotRepo, userRepo)
	exportService := service.NewExportService(workloadService, fileStorage)
	coachService := service.NewCoachService(userRepo, workloadService)

	// --- Background Jobs ---
	// Nightly snapshot keeps a per-athlete metrics history for charts.
	var scheduler *cron.Cron
	if cfg.Jobs.SnapshotSchedule != "" {
		scheduler = cron.New()
		err = scheduler.AddFunc(cfg.Jobs.SnapshotSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := workloadService.SnapshotAll(ctx); err != nil {
				log.Printf("ERROR: Workload snapshot job: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("FATAL: Invalid snapshot schedule %q: %v", cfg.Jobs.SnapshotSchedule, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Printf("Workload snapshot job scheduled: %s", cfg.Jobs.SnapshotSchedule)
	}

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, authService, periodService, sessionService, workloadService, exportService, coachService)

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
