package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tarasovcad/matchme-platform/internal/core/port"
	"github.com/tarasovcad/matchme-platform/internal/infra/config"
	"github.com/tarasovcad/matchme-platform/internal/infra/database"
	kafkainfra "github.com/tarasovcad/matchme-platform/internal/infra/kafka"
	"github.com/tarasovcad/matchme-platform/internal/infra/logger"
	redisinfra "github.com/tarasovcad/matchme-platform/internal/infra/redis"
	"github.com/tarasovcad/matchme-platform/internal/infra/telemetry"
	postgresrepo "github.com/tarasovcad/matchme-platform/internal/repository/postgres"
	redisrepo "github.com/tarasovcad/matchme-platform/internal/repository/redis"
	"github.com/tarasovcad/matchme-platform/internal/transport/http/middleware"
	"github.com/tarasovcad/matchme-platform/internal/transport/http/routes"
	"github.com/tarasovcad/matchme-platform/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.Attach(cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: cfg.Redis.RateLimitPrefix,
	})

	limiter := usecase.NewLimiter(rateLimitStore, limiterRules(cfg.RateLimit.Operations())).
		WithLogger(log).
		WithMetrics(metrics)

	cacheStore := redisrepo.NewCacheRepository(redisClient.Client(), cfg.Redis.CachePrefix)
	readThrough := usecase.NewReadThroughCache(cacheStore).
		WithLogger(log).
		WithMetrics(metrics)

	// Event delivery is best effort: with no reachable broker the stub
	// publisher keeps actions working and logs what would have been sent.
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	profileService := usecase.NewProfileService(repos.Profiles, limiter, readThrough, cfg.Cache, log)
	projectService := usecase.NewProjectService(repos.Projects, limiter, readThrough, eventPublisher, cfg.Cache, log)
	interactionService := usecase.NewInteractionService(repos.Interactions, repos.Profiles, repos.Projects, limiter, readThrough, eventPublisher, cfg.Cache, log)
	invitationService := usecase.NewInvitationService(repos.Invitations, repos.Projects, limiter, eventPublisher, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Limiter:  limiter,
		Metrics:  httpMetrics,
		Database: pool,
		Cache:    redisClient,
		Services: routes.ServiceSet{
			Profiles:     profileService,
			Projects:     projectService,
			Interactions: interactionService,
			Invitations:  invitationService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting matchme API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

// limiterRules converts the configured quota table into limiter rules. Rule
// order fixes which denial wins when several scopes reject at once: user
// first, then ip, then pair.
func limiterRules(ops map[string]config.OperationLimit) map[string][]usecase.Rule {
	rules := make(map[string][]usecase.Rule, len(ops))
	for name, limit := range ops {
		if limit.Window <= 0 {
			continue
		}

		var rs []usecase.Rule
		if limit.PerUser > 0 {
			rs = append(rs, usecase.Rule{Scope: usecase.ScopeUser, Quota: limit.PerUser, Window: limit.Window})
		}
		if limit.PerIP > 0 {
			rs = append(rs, usecase.Rule{Scope: usecase.ScopeIP, Quota: limit.PerIP, Window: limit.Window})
		}
		if limit.PerPair > 0 {
			rs = append(rs, usecase.Rule{Scope: usecase.ScopePair, Quota: limit.PerPair, Window: limit.Window})
		}
		if len(rs) > 0 {
			rules[name] = rs
		}
	}
	return rules
}
