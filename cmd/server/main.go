package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	config "github.com/maheshrc27/astraboltz/configs"
	"github.com/maheshrc27/astraboltz/internal/api/handlers"
	"github.com/maheshrc27/astraboltz/internal/api/middleware"
	job "github.com/maheshrc27/astraboltz/internal/jobs"
	"github.com/maheshrc27/astraboltz/internal/logging"
	"github.com/maheshrc27/astraboltz/internal/metrics"
	"github.com/maheshrc27/astraboltz/internal/queue"
	"github.com/maheshrc27/astraboltz/internal/repository"
	"github.com/maheshrc27/astraboltz/internal/service"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Setup(logging.Opts{Env: cfg.Env, Level: cfg.LogLevel})

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid time zone: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, metricsHandler, err := metrics.Setup("astraboltz")
	if err != nil {
		log.Fatalf("Failed to set up metrics: %v", err)
	}

	clock := time.Now
	outcome := job.RandomOutcome(cfg.Simulator.SuccessRate, nil)

	postRepo := repository.NewPostRepository(clock)

	var rdb *redis.Client
	var slot repository.CredentialSlot
	if cfg.RedisURI != "" {
		opts, err := redis.ParseURL(cfg.RedisURI)
		if err != nil {
			log.Fatalf("Invalid REDIS_URI: %v", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		slot = repository.NewRedisSlot(rdb, cfg.Credentials.Slot)
	} else {
		slot = repository.NewFileSlot(cfg.Credentials.Path, cfg.Credentials.Slot)
	}
	apiKeyRepo := repository.NewApiKeyRepository(slot, cfg.SecretKey)

	media := service.NewMemoryMediaStore()
	if cfg.R2.Enabled() {
		media, err = service.NewR2Store(ctx, cfg.R2)
		if err != nil {
			log.Fatalf("Failed to set up R2 storage: %v", err)
		}
	}

	var generator service.ContentGenerator
	if cfg.Gemini.APIKey != "" {
		generator, err = service.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
	} else {
		slog.Warn("GEMINI_API_KEY not set, caption and niche assist are disabled")
	}

	postService := service.NewPostService(postRepo, media, clock, loc, cfg.MinScheduleLead, m)
	calendarService := service.NewCalendarService(postRepo, clock, loc)
	assistService := service.NewAssistService(generator, m)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)

	// delayed publish tasks run only when redis is available
	var dispatcher queue.Dispatcher
	var asynqServer *asynq.Server
	if rdb != nil {
		redisConn, err := asynq.ParseRedisURI(cfg.RedisURI)
		if err != nil {
			log.Fatalf("Invalid REDIS_URI for asynq: %v", err)
		}

		client := asynq.NewClient(redisConn)
		defer client.Close()
		dispatcher = queue.NewDispatcher(client, clock)

		queueW := queue.NewQueue(postRepo, outcome, clock, m)
		asynqServer = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSchedulePost, queueW.HandleSchedulePostTask)

		go func() {
			slog.Info("Starting the Asynq server...")
			if err := asynqServer.Run(mux); err != nil {
				log.Fatalf("Could not start Asynq server: %v", err)
			}
		}()
	}

	simulator := job.NewLifecycleSimulator(postRepo, outcome, clock, cfg.Simulator.Interval, m)
	if err := simulator.Start(ctx); err != nil {
		log.Fatalf("Failed to start lifecycle simulator: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("unhandled error", "path", c.Path(), "error", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(middleware.Metrics(m))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, " + middleware.AccessKeyHeader,
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(metricsHandler))

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	routes := handlers.Routes{
		Post:     handlers.NewPostHandler(postService, dispatcher),
		Calendar: handlers.NewCalendarHandler(calendarService),
		Assist:   handlers.NewAssistHandler(assistService),
		Keys:     handlers.NewApiKeyHandler(apiKeyService),
		Platform: handlers.NewPlatformHandler(media),
	}
	routes.Mount(app, authMiddleware.AuthMiddleware())

	addr := fmt.Sprintf(":%d", cfg.Port)
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	slog.Info("Server is running", "addr", addr)

	gracefulShutdown(app, simulator, asynqServer)
}

func gracefulShutdown(app *fiber.App, simulator *job.LifecycleSimulator, asynqServer *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("Shutting down server...")

	simulator.Stop()

	if asynqServer != nil {
		asynqServer.Shutdown()
	}

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	slog.Info("Server shutdown complete.")
}
