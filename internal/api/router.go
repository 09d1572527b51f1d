package api

import (
	"net/http"
	"time"
	"thundercipher/internal/api/handler"
	authMiddleware "thundercipher/internal/api/middleware"
	"thundercipher/internal/app/service"
	"thundercipher/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

type RouterDeps struct {
	AuthService        *service.AuthService
	LabService         *service.LabService
	ScoringService     *service.ScoringService
	LeaderboardService *service.LeaderboardService
	ProgressService    *service.ProgressService
	EventService       *service.EventService
	AchievementService *service.AchievementService
	AdminService       *service.AdminService
	Streams            handler.StreamSource
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	// Verifies a bearer token when present and puts its claims in the
	// request context; enforcement happens per route group.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	progressHandler := handler.NewProgressHandler(deps.ProgressService, deps.Streams)
	feedHandler := handler.NewFeedHandler(deps.ProgressService, deps.Streams)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Group(func(timed chi.Router) {
			timed.Use(chiMiddleware.Timeout(60 * time.Second))

			authHandler := handler.NewAuthHandler(deps.AuthService)
			timed.Route("/auth", authHandler.RegisterRoutes)

			labHandler := handler.NewLabHandler(deps.LabService, deps.ScoringService)
			timed.Route("/labs", labHandler.RegisterRoutes)

			leaderboardHandler := handler.NewLeaderboardHandler(deps.LeaderboardService)
			timed.Route("/leaderboard", leaderboardHandler.RegisterRoutes)

			timed.Route("/progress", progressHandler.RegisterRoutes)
			timed.Get("/feed", feedHandler.Recent)

			eventHandler := handler.NewEventHandler(deps.EventService)
			timed.Route("/events", eventHandler.RegisterRoutes)

			achievementHandler := handler.NewAchievementHandler(deps.AchievementService)
			timed.Route("/achievements", achievementHandler.RegisterRoutes)

			adminHandler := handler.NewAdminHandler(deps.AdminService)
			timed.Route("/admin", adminHandler.RegisterRoutes)
		})

		// Streaming routes stay outside the timeout group; an SSE
		// connection is expected to outlive any request deadline.
		v1.Get("/feed/stream", feedHandler.Stream)
		v1.Group(func(authRouter chi.Router) {
			authRouter.Use(authMiddleware.Authenticator)
			authRouter.Get("/progress/stream", progressHandler.Stream)
		})
	})

	return r
}
