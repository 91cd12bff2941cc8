package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/schoolhub/chat-server-go/internal/auth"
	"github.com/schoolhub/chat-server-go/internal/config"
	"github.com/schoolhub/chat-server-go/internal/database"
	"github.com/schoolhub/chat-server-go/internal/handler"
	"github.com/schoolhub/chat-server-go/internal/middleware"
	"github.com/schoolhub/chat-server-go/internal/redis"
	"github.com/schoolhub/chat-server-go/internal/repository"
	"github.com/schoolhub/chat-server-go/internal/service"
	"github.com/schoolhub/chat-server-go/internal/ws"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("ENVIRONMENT") == "production"
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database connected")

	// Redis is optional. Without it each instance keeps its own rate limit
	// window, which is fine for a single-instance deployment.
	var rateLimit func(http.Handler) http.Handler
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")
		rateLimit = middleware.NewRedisRateLimitMiddleware(redisClient.Client, config.DefaultRateLimitPerMin).Handler
	} else {
		log.Info().Msg("redis not configured, using in-process rate limiter")
		rateLimit = middleware.NewRateLimitMiddleware(config.DefaultRateLimitPerMin).Handler
	}

	userRepo := repository.NewUserRepository(db.DB)
	teacherRepo := repository.NewTeacherRepository(db.DB)
	studentRepo := repository.NewStudentRepository(db.DB)
	convRepo := repository.NewConversationRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)

	issuer := auth.NewIssuer(cfg.TokenSecret, cfg.TokenTTL())
	authenticator := auth.NewAuthenticator(cfg.TokenSecret, userRepo, teacherRepo, studentRepo)

	accessService := service.NewAccessService(convRepo)
	convService := service.NewConversationService(convRepo, messageRepo, teacherRepo, studentRepo)
	messageService := service.NewMessageService(db, messageRepo, convRepo)

	hub := ws.NewHub()
	chatHandler := ws.NewHandler(authenticator, accessService, messageService, hub)

	authMiddleware := middleware.NewAuthMiddleware(authenticator)

	authHandler := handler.NewAuthHandler(userRepo, issuer)
	convHandler := handler.NewConversationHandler(convService, messageService, accessService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(config.APIRequestTimeout))
		r.Use(middleware.BodyLimit(0))

		r.Post("/token", authHandler.Token)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			r.Use(rateLimit)
			r.Mount("/conversations", convHandler.Routes())
		})
	})

	// Timeout and body limit middleware stay off the websocket route; the
	// connection manages its own deadlines.
	r.Get("/ws/chat/{conversationID}", chatHandler.ServeHTTP)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	hub.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
