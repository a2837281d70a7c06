package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asahigaoka/sitehooks/internal/ai"
	"github.com/asahigaoka/sitehooks/internal/api"
	"github.com/asahigaoka/sitehooks/internal/broadcast"
	"github.com/asahigaoka/sitehooks/internal/cache"
	"github.com/asahigaoka/sitehooks/internal/chatbot"
	"github.com/asahigaoka/sitehooks/internal/config"
	"github.com/asahigaoka/sitehooks/internal/contentstore"
	"github.com/asahigaoka/sitehooks/internal/github"
	"github.com/asahigaoka/sitehooks/internal/line"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/asahigaoka/sitehooks/internal/middleware"
	"github.com/asahigaoka/sitehooks/internal/publisher"
	"github.com/asahigaoka/sitehooks/internal/scheduler"
	"github.com/asahigaoka/sitehooks/internal/storage"
	"github.com/asahigaoka/sitehooks/internal/xpost"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	generateTimeout  = 30 * time.Second
	analyzeTimeout   = 60 * time.Second
	chatTimeout      = 25 * time.Second
	messagingTimeout = 10 * time.Second
	repoTimeout      = 30 * time.Second
	jobTimeout       = 5 * time.Minute
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: cfg.LogFile,
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting sitehooks...")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Redis backs the broadcast fast path only; without it the content
	// store history is the sole guard.
	var markers cache.RedisInterface
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without cache markers")
		} else {
			markers = redisClient
			defer func() {
				log.Info().Msg("Closing Redis client...")
				if err := redisClient.Close(); err != nil {
					log.Error().Err(err).Msg("Error closing Redis client")
				}
			}()
		}
	}

	s3Client, err := storage.NewS3Client(context.Background(), storage.Options{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicBaseURL:   cfg.SiteBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 client")
	}

	// Collaborators
	store := contentstore.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, contentstore.DefaultTimeouts)
	repo := github.NewClient(cfg.GitHubAPIURL, cfg.GitHubToken, cfg.GitHubRepo, cfg.GitHubBranch, repoTimeout)
	lineClient := line.NewClient(cfg.LineAPIURL, cfg.LineChannelAccessToken, messagingTimeout)
	pages := publisher.New(store, repo, cfg.SiteBaseURL)

	handlers := api.NewHandlers(cfg, api.Deps{
		Generate:  ai.NewWorkflowClient(cfg.DifyAPIEndpoint, cfg.DifyAPIKey, cfg.WorkflowUser, generateTimeout),
		Analyze:   ai.NewWorkflowClient(cfg.DifyImageAPIEndpoint, cfg.DifyImageAPIKey, cfg.WorkflowUser, analyzeTimeout),
		Media:     storage.NewMediaStore(s3Client, cfg.S3Bucket, cfg.SiteBaseURL),
		Broadcast: broadcast.NewService(store, lineClient, markers, cfg.CacheTTL),
		Chat: chatbot.NewService(store,
			ai.NewChatClient(cfg.DifyChatAPIEndpoint, cfg.DifyChatAPIKey, chatTimeout),
			lineClient),
		Poster: xpost.NewClient(cfg.XAPIURL, xpost.Credentials{
			ConsumerKey:       cfg.TwitterAPIKey,
			ConsumerSecret:    cfg.TwitterAPISecret,
			AccessToken:       cfg.TwitterAccessToken,
			AccessTokenSecret: cfg.TwitterAccessTokenSecret,
		}, messagingTimeout),
		Pages: pages,
	})

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New()) // Recover from panics
	app.Use(middleware.RequestLogger())

	api.SetupRoutes(app, cfg, handlers)

	// Daily list page rebuild
	sched := scheduler.New(jobTimeout)
	err = sched.Add("news-page", cfg.NewsPageSchedule, func(ctx context.Context) error {
		if err := cfg.Require(config.ComponentPages); err != nil {
			return err
		}
		res, err := pages.RegenerateNewsPage(ctx, pages.Today())
		if err != nil {
			return err
		}
		log.Info().Str("date", res.Date).Int("articles", res.ArticlesCount).Msg("news.html rebuilt")
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.NewsPageSchedule).Msg("Invalid NEWS_PAGE_SCHEDULE")
	}
	sched.Start()
	log.Info().Int("jobs", sched.Entries()).Msg("Scheduler started")

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	sched.Stop(ctx)

	// Shutdown the server
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
