package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialwave/internal/cache"
	"socialwave/internal/config"
	"socialwave/internal/database"
	"socialwave/internal/handler"
	"socialwave/internal/queue"
	"socialwave/internal/redis"
	"socialwave/internal/repository"
	"socialwave/internal/service"
	"socialwave/internal/worker"
)

// Run wires the whole server together and blocks until shutdown.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Redis backs the timeline cache and event stream. The server still
	// works without it; the feed then reads straight from Postgres.
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err == nil {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = redisClient.Ping(pingCtx)
		cancel()
	}
	if err != nil {
		log.Printf("Redis unavailable, feed will be served from the database: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Redis-backed components
	var (
		timelineCache cache.TimelineCache
		publisher     queue.Publisher
		workerManager *worker.Manager
	)
	if redisClient != nil {
		timelineCache = cache.NewTimelineCache(redisClient.Client)
		publisher = queue.NewPublisher(redisClient.Client)
		consumer := queue.NewConsumer(redisClient.Client)
		workerManager = worker.NewManager(consumer, worker.NewEventHandler(timelineCache), worker.DefaultWorkerCount)
	}

	// Services
	userService := service.NewUserService(userRepo, followRepo)
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg.JWTSecret, cfg.AccessTokenMaxAge, cfg.RefreshTokenMaxAge)
	followService := service.NewFollowService(userRepo, followRepo)
	postService := service.NewPostService(postRepo, commentRepo, userRepo, publisher)
	feedService := service.NewFeedService(postRepo, commentRepo, timelineCache)

	// Handlers
	router := NewRouter(RouterConfig{
		AuthHandler:   handler.NewAuthHandler(userService, authService),
		UserHandler:   handler.NewUserHandler(userService, followService),
		PostHandler:   handler.NewPostHandler(postService, feedService),
		HealthHandler: handler.NewHealthHandler(db),
		JWTSecret:     cfg.JWTSecret,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if workerManager != nil {
		if err := workerManager.Start(ctx); err != nil {
			log.Printf("Timeline workers failed to start: %v", err)
		} else {
			defer workerManager.Stop()
		}
	}

	// Periodic cleanup of long-expired refresh tokens.
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := refreshTokenRepo.DeleteExpired(ctx, 24*time.Hour); err != nil {
					log.Printf("Refresh token cleanup failed: %v", err)
				} else if n > 0 {
					log.Printf("Refresh token cleanup removed %d tokens", n)
				}
			}
		}
	}()

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
