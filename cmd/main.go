// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"fintrax_backend/internal/config"
	"fintrax_backend/internal/handlers"
	"fintrax_backend/internal/middleware"
	"fintrax_backend/internal/repository"
	"fintrax_backend/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// 設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	if err := config.LoadConfig("configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		tintOpts := &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		}
		handler = tint.NewHandler(os.Stderr, tintOpts)
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}
		handler = slog.NewJSONHandler(os.Stderr, jsonOpts)
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Application starting...", slog.String("app", config.AppName))

	// 2. Initialize Database Connection (GORM)
	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// 3. Dependency Injection
	userRepo := repository.NewGormUserRepository()
	transactionRepo := repository.NewGormTransactionRepository()
	goalRepo := repository.NewGormGoalRepository()
	enrollmentRepo := repository.NewGormEnrollmentRepository()
	achievementRepo := repository.NewGormAchievementRepository()

	evaluator := service.NewEvaluator(transactionRepo, goalRepo, enrollmentRepo)

	userService := service.NewUserService(db, userRepo, &config.Cfg, logger)
	transactionService := service.NewTransactionService(db, transactionRepo, logger)
	goalService := service.NewGoalService(db, goalRepo, logger)
	achievementService := service.NewAchievementService(db, achievementRepo, userRepo, evaluator, logger)

	// ドメイン書き込み後の非同期実績評価キュー
	unlockQueue := service.NewUnlockQueue(achievementService, &config.Cfg, logger)
	unlockQueue.Start()
	defer unlockQueue.Stop()

	userHandler := handlers.NewUserHandler(userService, logger)
	transactionHandler := handlers.NewTransactionHandler(transactionService, logger)
	goalHandler := handlers.NewGoalHandler(goalService, logger)
	achievementHandler := handlers.NewAchievementHandler(achievementService, logger)

	// 4. Setup Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	}
	corsHandler := cors.New(corsOptions)
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	trigger := middleware.AchievementTrigger(unlockQueue)

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// --- Public routes ---
		r.Post("/users", userHandler.Register)
		r.Post("/auth/login", userHandler.Login)

		// --- Protected routes ---
		r.Group(func(r chi.Router) {
			if config.Cfg.Auth.Enabled {
				slog.Info("Applying JWT authentication middleware")
				r.Use(middleware.JWTAuthMiddleware(&config.Cfg))
			} else {
				slog.Warn("Authentication disabled, using X-User-Document dev middleware")
				r.Use(middleware.DevUserContextMiddleware)
			}

			r.Get("/users/me", userHandler.GetProfile)

			// Achievement routes
			r.Route("/achievements", func(r chi.Router) {
				r.Get("/{user_document}", achievementHandler.GetUserAchievements)
				r.Post("/verify", achievementHandler.VerifyAchievements)
				r.Get("/history/{user_document}", achievementHandler.GetUnlockHistory)
			})

			// Transaction routes (書き込みは実績評価トリガーでラップ)
			r.Route("/transactions", func(r chi.Router) {
				r.With(trigger).Post("/", transactionHandler.PostTransaction)
				r.Get("/", transactionHandler.GetTransactions)
				r.Get("/{transaction_id}", transactionHandler.GetTransaction)
				r.With(trigger).Put("/{transaction_id}", transactionHandler.PutTransaction)
				r.With(trigger).Delete("/{transaction_id}", transactionHandler.DeleteTransaction)
			})

			// Goal routes (書き込みは実績評価トリガーでラップ)
			r.Route("/goals", func(r chi.Router) {
				r.With(trigger).Post("/", goalHandler.PostGoal)
				r.Get("/", goalHandler.GetGoals)
				r.Get("/{goal_id}", goalHandler.GetGoal)
				r.With(trigger).Put("/{goal_id}", goalHandler.PutGoal)
				r.With(trigger).Put("/{goal_id}/status", goalHandler.PutGoalStatus)
				r.With(trigger).Post("/{goal_id}/contribute", goalHandler.PostGoalContribute)
				r.With(trigger).Post("/{goal_id}/withdraw", goalHandler.PostGoalWithdraw)
				r.With(trigger).Delete("/{goal_id}", goalHandler.DeleteGoal)
			})
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sqlDB, err := db.DB()
		if err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not get DB object", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 5. Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}
	slog.Info("Server exited gracefully")
}
