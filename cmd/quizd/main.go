package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/quizdesk/quizdesk/internal/api/http"
	"github.com/quizdesk/quizdesk/internal/audit"
	auth "github.com/quizdesk/quizdesk/internal/auth/middleware"
	"github.com/quizdesk/quizdesk/internal/config"
	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/identity"
	"github.com/quizdesk/quizdesk/internal/notify"
	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	if err := identity.EnsureAdmin(ctx, dbh, cfg.AdminUser, cfg.AdminPass); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	store := quiz.NewSQLStore(dbh)
	users := identity.NewSQLResolver(dbh)
	events := audit.NewEventRepo(dbh)
	notices := notify.NewStore(dbh)

	var notifier notify.Notifier = notices
	if cfg.AMQPURL != "" {
		pub, err := notify.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("amqp disabled: %v", err)
		} else {
			defer pub.Close()
			notifier = notify.Fanout{notices, pub}
		}
	}

	svc := quiz.NewService(store, store, store, users, events, notifier)

	// --- Quiz lifecycle sweep ---
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go quiz.NewScheduler(store, cfg.SweepInterval).Run(sweepCtx)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)
	verify := func(ctx context.Context, usernameOrEmail, password string) (string, string, error) {
		a, err := users.Verify(ctx, usernameOrEmail, password)
		if err != nil {
			return "", "", err
		}
		return a.Username, a.Role, nil
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, verify))

	// Protected API (JWT → subject/role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Quiz authoring (instructor/admin)
		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.CreateQuizHandler(store))
		pr.With(rbac.Require("quiz:delete")).
			Delete("/quizzes/{quizID}", api.DeleteQuizHandler(store))
		pr.With(rbac.Require("question:create")).
			Post("/quizzes/{quizID}/questions/authoring", api.CreateQuestionHandler(store))
		pr.With(rbac.Require("question:create")).
			Get("/quizzes/{quizID}/questions/authoring", api.ListQuestionsHandler(store))

		// Quiz catalog
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes", api.ListQuizzesHandler(store))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(store))

		// Student flow: randomized questions, then one submission
		pr.With(rbac.Require("quiz:take")).
			Get("/quizzes/{quizID}/questions", api.QuizQuestionsHandler(svc))
		pr.With(rbac.Require("quiz:submit")).
			Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(svc))

		// Attempts
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(store, users))
		pr.With(rbac.Require("attempt:view-own")).
			Get("/attempts/mine", api.MyAttemptsHandler(store, users))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", api.GetAttemptHandler(store, users, store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}/answers", api.AttemptAnswersHandler(store, users, store))
		pr.With(rbac.Require("attempt:delete")).
			Delete("/attempts/{attemptID}", api.DeleteAttemptHandler(store))
		pr.With(rbac.RequireAny("attempt:view-all")).
			Get("/quizzes/{quizID}/average-score", api.AverageScoreHandler(store))

		// Users
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// Notifications
		pr.With(rbac.Require("notification:view")).
			Get("/notifications", api.MyNotificationsHandler(notices, users))
		pr.With(rbac.Require("notification:view")).
			Post("/notifications/{notificationID}/read", api.MarkNotificationReadHandler(notices))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
