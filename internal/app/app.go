package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nmezhoud/healthlink/internal/config"
	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/internal/fitness"
	"github.com/nmezhoud/healthlink/internal/handler"
	"github.com/nmezhoud/healthlink/internal/repository"
	"github.com/nmezhoud/healthlink/internal/service"
	"github.com/nmezhoud/healthlink/internal/utils"
	"github.com/nmezhoud/healthlink/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

// handlers bundles the HTTP handlers wired by NewApp
type handlers struct {
	auth       *handler.AuthHandler
	link       *handler.LinkHandler
	vitals     *handler.VitalsHandler
	assignment *handler.AssignmentHandler
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	blacklistService := service.NewTokenBlacklistService(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	providerClient := fitness.NewClient(cfg.Provider)
	oauthConfig := fitness.OAuthConfig(cfg.Provider)
	stateStore := service.NewStateStore(infra.Redis(), cfg.Provider.StateTTL.Duration)

	authService := service.NewAuthService(
		repos.Patient,
		repos.Doctor,
		repos.Token,
		jwtManager,
		blacklistService,
		cfg.Security.BCryptCost,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)
	linkService := service.NewLinkService(repos.Patient, repos.Credential, stateStore, oauthConfig, providerClient)
	vitalsService := service.NewVitalsService(repos.Credential, repos.Vitals, providerClient, oauthConfig)
	predictionService := service.NewPredictionService(repos.Vitals, cfg.Prediction)
	assignmentService := service.NewAssignmentService(repos.Patient, repos.Doctor, repos.Assignment)
	accessGate := service.NewAccessGate(repos.Patient)

	h := handlers{
		auth:       handler.NewAuthHandler(authService),
		link:       handler.NewLinkHandler(linkService, jwtManager),
		vitals:     handler.NewVitalsHandler(accessGate, vitalsService, predictionService),
		assignment: handler.NewAssignmentHandler(assignmentService),
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("healthlink"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, h, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h handlers,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	authRequired := handler.AuthMiddleware(authService)
	rateLimited := handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register/patient", rateLimited, h.auth.RegisterPatient)
			auth.POST("/register/doctor", rateLimited, h.auth.RegisterDoctor)
			auth.POST("/login", rateLimited, h.auth.Login)
			auth.POST("/refresh", h.auth.Refresh)
			auth.POST("/logout", authRequired, h.auth.Logout)
		}

		link := api.Group("/link")
		{
			link.GET("/begin", rateLimited, h.link.Begin)
			link.GET("/callback", h.link.Callback)
		}

		api.GET("/vitals", authRequired, h.vitals.GetVitals)
		api.GET("/vitals/prediction", authRequired, h.vitals.GetPrediction)

		api.GET("/doctors", h.assignment.ListDoctors)
		api.GET("/patients", authRequired, handler.RequireRole(domain.RoleDoctor), h.assignment.ListPatients)

		assignments := api.Group("/assignments", authRequired)
		{
			assignments.POST("", handler.RequireRole(domain.RolePatient), h.assignment.CreateRequest)
			assignments.DELETE("", h.assignment.Unassign)
			assignments.GET("/pending", handler.RequireRole(domain.RoleDoctor), h.assignment.PendingRequests)
			assignments.POST("/respond", handler.RequireRole(domain.RoleDoctor), h.assignment.Respond)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
