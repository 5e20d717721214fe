package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scholar-api/internal/config"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/events"
	"github.com/phrazzld/scholar-api/internal/generation"
	"github.com/phrazzld/scholar-api/internal/lock"
	"github.com/phrazzld/scholar-api/internal/platform/gemini"
	"github.com/phrazzld/scholar-api/internal/platform/ollama"
	"github.com/phrazzld/scholar-api/internal/platform/openai"
	"github.com/phrazzld/scholar-api/internal/platform/postgres"
	"github.com/phrazzld/scholar-api/internal/platform/redislock"
	"github.com/phrazzld/scholar-api/internal/prompt"
	"github.com/phrazzld/scholar-api/internal/service"
	"github.com/phrazzld/scholar-api/internal/service/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	metrics *prometheus.Registry

	// jwtService is nil when authentication is disabled.
	jwtService          auth.JWTService
	generationService   service.GenerationService
	verificationService service.VerificationService
}

// newApplication wires stores, providers and services on top of an open
// database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: prometheus.NewRegistry(),
	}
	app.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "scholar"),
	)

	if cfg.Auth.Enabled() {
		jwtService, err := auth.NewJWTService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		app.jwtService = jwtService
		logger.Info("bearer token authentication enabled")
	} else {
		logger.Warn("authentication disabled; API routes are open")
	}

	// Stores
	courseStore := postgres.NewPostgresCourseStore(db, logger)
	summaryStore := postgres.NewPostgresSummaryStore(db, logger)
	exerciseStore := postgres.NewPostgresExerciseStore(db, logger)
	templateStore := postgres.NewPostgresTemplateStore(db, logger)
	usageLogStore := postgres.NewPostgresUsageLogStore(db, logger)

	prompts, err := prompt.NewResolver(templateStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt resolver: %w", err)
	}

	callOptions := callOptionsFromConfig(cfg.LLM)
	registry, err := newProviderRegistry(cfg.LLM, callOptions, app.metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider registry: %w", err)
	}

	locker, err := app.newLocker(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation locker: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewUsageLogHandler(usageLogStore, logger))

	app.generationService, err = service.NewGenerationService(
		service.GenerationDeps{
			Courses:   courseStore,
			Summaries: summaryStore,
			Exercises: exerciseStore,
			Prompts:   prompts,
			Providers: registry,
			Locker:    locker,
			Events:    emitter,
		},
		service.GenerationConfig{
			CallOptions:          callOptions,
			DefaultQuestionCount: cfg.Generation.DefaultQuestionCount,
			MaxQuestionCount:     cfg.Generation.MaxQuestionCount,
			DefaultDifficulty:    domain.Difficulty(cfg.Generation.DefaultDifficulty),
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	app.verificationService, err = service.NewVerificationService(registry, callOptions, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

func callOptionsFromConfig(cfg config.LLMConfig) generation.CallOptions {
	return generation.CallOptions{
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Timeout:         time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	}
}

// newProviderRegistry registers every supported backend. Resolved providers
// are retried on transient failures and instrumented. Metrics wrap the
// retries, so a call is counted once however many attempts it took.
func newProviderRegistry(
	cfg config.LLMConfig,
	defaults generation.CallOptions,
	reg prometheus.Registerer,
	logger *slog.Logger,
) (*generation.Registry, error) {
	registry, err := generation.NewRegistry(logger, cfg.DefaultModel)
	if err != nil {
		return nil, err
	}

	openai.Register(registry, openai.Config{BaseURL: cfg.OpenAIBaseURL, Defaults: defaults}, logger)
	openai.RegisterDeepSeek(registry, openai.Config{BaseURL: cfg.DeepSeekBaseURL, Defaults: defaults}, logger)
	gemini.Register(registry, gemini.Config{Defaults: defaults}, logger)
	ollama.Register(registry, ollama.Config{BaseURL: cfg.OllamaBaseURL, Defaults: defaults}, logger)

	registry.Use(
		generation.WithRetry(logger, generation.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  time.Duration(cfg.RetryBaseDelayMillis) * time.Millisecond,
		}),
		generation.Instrument(generation.NewMetrics(reg), generation.NewTiktokenCounter(logger)),
	)
	return registry, nil
}

// newLocker returns the configured generation lock.
func (app *application) newLocker(ctx context.Context) (lock.Locker, error) {
	ttl := time.Duration(app.config.Lock.TTLSeconds) * time.Second
	switch app.config.Lock.Backend {
	case "redis":
		client, err := redislock.Connect(ctx, app.config.Lock.RedisURL)
		if err != nil {
			return nil, err
		}
		app.redis = client
		app.logger.Info("using redis generation lock", "ttl", ttl)
		return redislock.New(client, ttl, app.logger)
	default:
		app.logger.Info("using in-process generation lock")
		return lock.NewMemory(), nil
	}
}

// Run serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases external connections.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}
