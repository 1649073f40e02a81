package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/studyquest/backend/internal/auth"
	"github.com/studyquest/backend/internal/config"
	"github.com/studyquest/backend/internal/database"
	"github.com/studyquest/backend/internal/gamification"
	"github.com/studyquest/backend/internal/generator"
	"github.com/studyquest/backend/internal/middleware"
	"github.com/studyquest/backend/internal/quizzes"
	"github.com/studyquest/backend/internal/resources"
)

func main() {
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize services
	gamService := gamification.NewService(gamification.NewSQLStore(db), cfg.StoreTimeout)
	gen := generator.NewGenerator()

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	gamHandler := gamification.NewHandler(gamService)
	resourceHandler := resources.NewHandler(resources.NewStore(db), gamService)
	quizHandler := quizzes.NewHandler(quizzes.NewStore(db), gen, gamService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/gamification/events", gamHandler.RecordEvent).Methods("POST")
	protected.HandleFunc("/gamification/profile", gamHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/gamification/badges", gamHandler.GetBadges).Methods("GET")
	protected.HandleFunc("/gamification/title", gamHandler.SetTitle).Methods("PUT")
	protected.HandleFunc("/leaderboard", gamHandler.Leaderboard).Methods("GET")

	protected.HandleFunc("/resources", resourceHandler.Create).Methods("POST")
	protected.HandleFunc("/resources", resourceHandler.List).Methods("GET")
	protected.HandleFunc("/resources/{id}/pages/{page}/read", resourceHandler.ReadPage).Methods("POST")
	protected.HandleFunc("/resources/{id}/progress", resourceHandler.ReportProgress).Methods("PUT")

	protected.HandleFunc("/quizzes/generate", quizHandler.Generate).Methods("POST")
	protected.HandleFunc("/flashcards/generate", quizHandler.GenerateFlashcards).Methods("POST")
	protected.HandleFunc("/quizzes/{id}", quizHandler.Get).Methods("GET")
	protected.HandleFunc("/quizzes/{id}/complete", quizHandler.Complete).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Background season worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gamService.StartSeasonWorker(ctx)

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Reading-Session"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	log.Printf("Server starting on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
