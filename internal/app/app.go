// Package app wires configuration, stores and services into a runnable server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interviewbot/internal/cache"
	"interviewbot/internal/config"
	"interviewbot/internal/llm"
	"interviewbot/internal/logger"
	"interviewbot/internal/observability/metrics"
	"interviewbot/internal/repository"
	"interviewbot/internal/service"
	"interviewbot/internal/transport/rest"
	"interviewbot/internal/transport/ws"
)

type App struct {
	Mongo      *mongo.Client
	Redis      *redis.Client
	Hub        *ws.Hub
	Interviews *service.InterviewService
	Templates  *service.TemplateService
	Handler    http.Handler
}

// New connects to MongoDB and Redis and builds the HTTP handler
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	log.Info("connected to MongoDB", "db", cfg.MongoDB)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		mongoClient.Disconnect(ctx)
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info("connected to Redis", "addr", cfg.RedisAddr)

	engineMetrics := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)
	completion, err := newLLMClient(ctx, cfg.AI, log)
	if err != nil {
		mongoClient.Disconnect(ctx)
		rdb.Close()
		return nil, err
	}
	guarded := llm.NewGuardedClient(completion, cfg.AI.Timeout, engineMetrics)

	db := mongoClient.Database(cfg.MongoDB)

	// Initialize repositories
	templateRepo := repository.NewTemplateRepo(db)
	sessionRepo := repository.NewSessionRepo(db)

	// Initialize caches
	templateCache := cache.NewTemplateCache(rdb, templateRepo, cfg.TemplateCacheTTL)
	sessionCache := cache.NewSessionCache(rdb, cfg.SessionTTL)
	turnLock := cache.NewTurnLock(rdb, cfg.TurnLockTTL, cfg.TurnLockWait)

	// Initialize services
	templateSvc := service.NewTemplateService(templateCache, templateRepo)
	evaluator := service.NewEvaluatorService(guarded, cfg.AI.Models.Evaluate, engineMetrics, log.With("component", "evaluator"))
	classifier := service.NewConfirmationService(guarded, cfg.AI.Models.Classify, engineMetrics, log.With("component", "classifier"))
	interviewSvc := service.NewInterviewService(
		templateSvc,
		sessionCache,
		sessionRepo,
		evaluator,
		classifier,
		turnLock,
		service.InterviewOptions{ContextWindow: cfg.ContextWindow, RejectPolicy: cfg.RejectPolicy},
		engineMetrics,
		log.With("component", "interview"),
	)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	wsHub := ws.NewHub(log.With("component", "ws"))
	interviewSvc.SetBroadcaster(wsHub)

	handler := rest.NewRouter(&rest.Container{
		InterviewService: interviewSvc,
		TemplateService:  templateSvc,
		WSHub:            wsHub,
		Logger:           log,
		AllowedOrigins:   cfg.AllowedOrigins,
	})

	return &App{
		Mongo:      mongoClient,
		Redis:      rdb,
		Hub:        wsHub,
		Interviews: interviewSvc,
		Templates:  templateSvc,
		Handler:    handler,
	}, nil
}

// Close releases the hub and store connections
func (a *App) Close(ctx context.Context) {
	a.Hub.Close()
	a.Redis.Close()
	a.Mongo.Disconnect(ctx)
}

// newLLMClient picks the completion provider. Without credentials every
// evaluation runs the deterministic fallback.
func newLLMClient(ctx context.Context, cfg *config.AIConfig, log *logger.Logger) (llm.Client, error) {
	if !cfg.IsEnabled() {
		log.Warn("LLM disabled, using heuristic evaluation", "provider", cfg.Provider)
		return llm.Disabled{}, nil
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Models.Evaluate)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		log.Info("LLM configured", "provider", cfg.Provider, "evaluate_model", cfg.Models.Evaluate, "classify_model", cfg.Models.Classify)
		return client, nil
	default:
		log.Info("LLM configured", "provider", cfg.Provider, "base_url", cfg.BaseURL, "evaluate_model", cfg.Models.Evaluate, "classify_model", cfg.Models.Classify)
		return llm.NewOpenRouterClient(cfg.APIKey, cfg.BaseURL, cfg.Models.Evaluate), nil
	}
}
