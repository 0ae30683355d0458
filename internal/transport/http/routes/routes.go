package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tarasovcad/matchme-platform/internal/infra/config"
	"github.com/tarasovcad/matchme-platform/internal/transport/http/handlers"
	"github.com/tarasovcad/matchme-platform/internal/transport/http/middleware"
	"github.com/tarasovcad/matchme-platform/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Profiles     *usecase.ProfileService
	Projects     *usecase.ProjectService
	Interactions *usecase.InteractionService
	Invitations  *usecase.InvitationService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Limiter  *usecase.Limiter
	Metrics  *middleware.HTTPMetrics
	Services ServiceSet
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.Identity())
	r.Use(middleware.Logger(deps.Logger))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	if deps.Config != nil && len(deps.Config.App.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(deps.Limiter, "api.global"))
	{
		if deps.Services.Profiles != nil {
			profileHandler := handlers.NewProfileHandler(deps.Services.Profiles)
			profileHandler.RegisterRoutes(api.Group("/profiles"))
		}

		if deps.Services.Projects != nil {
			projectHandler := handlers.NewProjectHandler(deps.Services.Projects)
			projectHandler.RegisterRoutes(api.Group("/projects"))
		}

		if deps.Services.Interactions != nil {
			interactionHandler := handlers.NewInteractionHandler(deps.Services.Interactions)
			interactionHandler.RegisterRoutes(api.Group("/interactions"))
		}

		if deps.Services.Invitations != nil {
			invitationHandler := handlers.NewInvitationHandler(deps.Services.Invitations)
			invitationHandler.RegisterRoutes(api.Group("/invitations"))
		}
	}

	return r
}
