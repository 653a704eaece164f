package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	fiberRecover "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"center-directory-service/internal/cache"
	"center-directory-service/internal/config"
	"center-directory-service/internal/database"
	"center-directory-service/internal/distance"
	"center-directory-service/internal/handler"
	"center-directory-service/internal/middleware"
	"center-directory-service/internal/recommend"
	"center-directory-service/internal/repository"
	"center-directory-service/internal/schedule"
	"center-directory-service/internal/service"
	"center-directory-service/internal/similarity"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis (non-fatal, rate limiting falls back to in-process buckets)
	var rdb *redis.Client
	if client, err := database.NewRedis(cfg.Redis); err != nil {
		slog.Warn("Redis unavailable, rate limiting per process", "error", err)
	} else {
		rdb = client
	}

	listCache, err := cache.New[service.CachedList](cache.Config{
		Name:          "lists",
		Capacity:      cfg.Cache.Capacity,
		DefaultTTL:    cfg.Cache.TTL,
		SweepInterval: cfg.Cache.SweepInterval,
	})
	if err != nil {
		slog.Error("failed to create cache", "error", err)
		os.Exit(1)
	}

	var provider distance.Provider = distance.HaversineProvider{}
	if cfg.Distance.Provider == "matrix" {
		provider = distance.NewMatrixClient(distance.MatrixConfig{
			APIKey:            cfg.Distance.APIKey,
			BaseURL:           cfg.Distance.BaseURL,
			Timeout:           cfg.Distance.Timeout,
			RequestsPerSecond: cfg.Distance.RequestsPerSecond,
		})
	}
	slog.Info("distance provider selected", "provider", provider.Name())

	// Initialize layers
	engine := schedule.NewEngine(schedule.NewSystemClock())
	simWeights := similarity.Weights{
		Tags:     cfg.Scoring.SimilarityTags,
		Distance: cfg.Scoring.SimilarityDistance,
		Rating:   cfg.Scoring.SimilarityRating,
		Hours:    cfg.Scoring.SimilarityHours,
	}
	scorer := recommend.NewScorer(recommend.Weights{
		Liked:    cfg.Scoring.Liked,
		Disliked: cfg.Scoring.Disliked,
		Filters:  cfg.Scoring.Filters,
		Quality:  cfg.Scoring.Quality,
	}, simWeights, cfg.Scoring.TopFilters)

	centerRepo := repository.NewCenterRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	ruleRepo := repository.NewRuleRepository(db)

	lists := service.NewLists(listCache)
	centerSvc := service.NewCenterService(centerRepo, provider, engine, lists, cfg.Cache.TTL, simWeights)
	recSvc := service.NewRecommendationService(centerRepo, interactionRepo, snapshotRepo, ruleRepo, scorer, engine, lists, cfg.Cache.TTL)
	interactionSvc := service.NewInteractionService(interactionRepo, centerRepo, lists)

	centerH := handler.NewCenterHandler(centerSvc, cfg.RecommendationLimitMax)
	recH := handler.NewRecommendationHandler(recSvc, listCache, cfg.RecommendationLimitMax)
	interactionH := handler.NewInteractionHandler(interactionSvc)

	limiter, err := middleware.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window)
	if err != nil {
		slog.Error("failed to create rate limiter", "error", err)
		os.Exit(1)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Center Directory Service",
		ServerHeader: "Center-Directory-Service",
		ErrorHandler: handler.ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	// Middleware
	app.Use(fiberRecover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.Metrics())
	app.Use(limiter.Handler())
	app.Use(middleware.Auth())

	app.Get("/health", centerH.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger docs
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger.yaml not found, swagger UI will be unavailable", "error", err)
	} else {
		handler.RegisterSwagger(app, swaggerYAML)
	}

	// API routes
	api := app.Group("/api/v1")
	api.Get("/health", centerH.Health)
	api.Get("/tags", centerH.ListTags)

	api.Get("/centers", centerH.Browse)
	api.Post("/centers/search", centerH.Search)
	api.Get("/centers/:id", centerH.GetCenter)
	api.Get("/centers/:id/similar", centerH.SimilarCenters)

	api.Get("/users/:id/recommendations", recH.GetRecommendations)
	api.Get("/users/:id/recommendations/snapshots", recH.GetSnapshots)
	api.Put("/users/:id/reactions/:centerId", interactionH.SetReaction)
	api.Get("/users/:id/reactions", interactionH.GetReactions)
	api.Post("/users/:id/filter-clicks", interactionH.RecordFilterClick)
	api.Get("/users/:id/filter-clicks", interactionH.MostClickedFilters)
	api.Post("/users/:id/page-interactions/:centerId", interactionH.RecordPageInteraction)

	api.Get("/rules", recH.GetRules)
	api.Get("/cache/stats", recH.CacheStats)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		slog.Info("starting center directory service", "addr", addr)
		if err := app.Listen(addr); err != nil {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down center directory service...")

	if err := app.Shutdown(); err != nil {
		slog.Error("error shutting down HTTP server", "error", err)
	}
	listCache.Close()
	limiter.Close()

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("error closing Redis connection", "error", err)
		}
	}
	slog.Info("shutdown complete")
}
