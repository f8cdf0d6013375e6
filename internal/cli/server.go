package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizhub-service/internal/app"
	"quizhub-service/internal/auth"
	"quizhub-service/internal/config"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
	pgstore "quizhub-service/internal/infra/postgres"
	redisinfra "quizhub-service/internal/infra/redis"
	transport "quizhub-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := applyMigrations(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	// Quiz and response storage: Postgres when configured, otherwise an
	// in-memory store seeded with a demo quiz.
	var quizStore app.QuizStore
	var loader memory.QuizLoader
	var responses app.ResponseStore
	if pool != nil {
		store := pgstore.NewStore(pool)
		quizStore = store
		loader = store
		responses = store
	} else {
		store := memory.NewQuizStore(sampleQuizzes())
		quizStore = store
		loader = store
		responses = memory.NewResponseStore()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
		responses = redisinfra.NewResultStore(redisClient, responses, redisTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var sessions app.SessionRegistry
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	tokens, err := auth.NewTokenManager(
		cfg.Auth.Secret,
		cfg.Auth.AdminUsername,
		cfg.Auth.AdminPassword,
		config.TTLDuration(cfg.Auth.AccessTTL, 15*time.Minute),
		config.TTLDuration(cfg.Auth.RefreshTTL, 30*24*time.Hour),
	)
	if err != nil {
		return err
	}

	takeService := app.NewTakeService(quizRepo, quizStore, responses, sessions)
	adminService := app.NewAdminService(quizStore, responses)
	api := transport.NewAPI(takeService, adminService, tokens)
	wsHandler := transport.NewWSHandler(takeService)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(api, wsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizhub service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes seeds demo content for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	now := time.Now()
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:               "quiz-1",
			Title:            "General Knowledge",
			Description:      "A short warm-up quiz",
			TimeLimitMinutes: 10,
			PassingScore:     50,
			Active:           true,
			AllowRetakes:     true,
			MaxAttempts:      3,
			CreatedAt:        now,
			UpdatedAt:        now,
			Questions: []domain.Question{
				{
					ID:    "q1",
					Text:  "What is 2 + 2?",
					Type:  domain.MultipleChoice,
					Order: 1,
					Options: []domain.Option{
						{ID: "o1", Text: "3", Order: 1},
						{ID: "o2", Text: "4", Correct: true, Order: 2},
						{ID: "o3", Text: "5", Order: 3},
					},
					Points:   1,
					Required: true,
				},
				{
					ID:    "q2",
					Text:  "The sky is blue.",
					Type:  domain.TrueFalse,
					Order: 2,
					Options: []domain.Option{
						{ID: "o4", Text: "True", Correct: true, Order: 1},
						{ID: "o5", Text: "False", Order: 2},
					},
					Points: 1,
				},
				{
					ID:     "q3",
					Text:   "Name the capital of France.",
					Type:   domain.FreeText,
					Order:  3,
					Points: 2,
					Options: []domain.Option{
						{ID: "o6", Text: "Paris", Correct: true, Order: 1},
					},
				},
			},
		},
	}
}
