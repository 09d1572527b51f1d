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
	"thundercipher/internal/api"
	"thundercipher/internal/app/service"
	"thundercipher/internal/app/worker"
	"thundercipher/internal/common/security"
	"thundercipher/internal/domain/repository"
	"thundercipher/internal/platform/config"
	"thundercipher/internal/platform/database"
	"thundercipher/internal/platform/queue"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	profileRepo := repository.NewPgProfileRepository(database.DB)
	labRepo := repository.NewPgLabRepository(database.DB)
	progressRepo := repository.NewPgProgressRepository(database.DB)
	submissionLogRepo := repository.NewPgSubmissionLogRepository(database.DB)
	eventRepo := repository.NewPgEventRepository(database.DB)

	// 6. Initialize Redis-backed infrastructure
	rankQueue := queue.NewRankQueue(queue.RDB)
	codeStore := queue.NewCodeStore(queue.RDB)
	publisher := queue.NewPublisher(queue.RDB)
	subscriber := queue.NewSubscriber(queue.RDB)
	cache := queue.NewCache(queue.RDB)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo, profileRepo, codeStore, service.NewLogMailer())
	labService := service.NewLabService(labRepo)
	scoringService := service.NewScoringService(labRepo, progressRepo, profileRepo, submissionLogRepo, rankQueue, publisher, cache)
	leaderboardService := service.NewLeaderboardService(profileRepo, cache)
	progressService := service.NewProgressService(progressRepo)
	eventService := service.NewEventService(eventRepo)
	achievementService := service.NewAchievementService(progressRepo)
	adminService := service.NewAdminService(userRepo, labRepo, eventRepo, progressRepo, submissionLogRepo)

	// 8. Initialize Rank Worker (as a goroutine)
	rankWorker := worker.NewRankWorker(queue.RDB, profileRepo)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go rankWorker.Start(workerCtx)
	fmt.Println("Rank worker started.")

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(api.RouterDeps{
		AuthService:        authService,
		LabService:         labService,
		ScoringService:     scoringService,
		LeaderboardService: leaderboardService,
		ProgressService:    progressService,
		EventService:       eventService,
		AchievementService: achievementService,
		AdminService:       adminService,
		Streams:            subscriber,
	})

	server := &http.Server{
		Addr:        ":" + config.AppConfig.APIPort,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: SSE connections are long-lived. Non-streaming
		// routes are bounded by the router's timeout middleware.
		IdleTimeout: 120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop

	log.Println("Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
