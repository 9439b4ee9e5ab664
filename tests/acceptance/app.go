package acceptance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nmezhoud/healthlink/internal/app"
	"github.com/nmezhoud/healthlink/internal/config"
	"github.com/nmezhoud/healthlink/internal/repository"
	"github.com/nmezhoud/healthlink/internal/utils"
	"github.com/nmezhoud/healthlink/pkg/database"
	"github.com/nmezhoud/healthlink/pkg/observability"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// TestApp runs the real application router against stubbed external
// endpoints. It reuses app.NewApp so tests exercise the same wiring as
// main.go.
type TestApp struct {
	Config       *config.Config
	App          *app.App
	Server       *httptest.Server
	BaseURL      string
	Repositories *repository.Repositories
	JWTManager   *utils.JWTManager
	Logger       *zap.Logger

	meterProvider *metric.MeterProvider
}

// testInfrastructure satisfies app.Infrastructure with connections owned by
// the suite
type testInfrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

func (i *testInfrastructure) Postgres() *database.Postgres         { return i.postgres }
func (i *testInfrastructure) Redis() *database.Redis               { return i.redis }
func (i *testInfrastructure) Logger() *zap.Logger                  { return i.logger }
func (i *testInfrastructure) MetricsHandler() http.Handler         { return i.metricsHandler }
func (i *testInfrastructure) MeterProvider() *metric.MeterProvider { return i.meterProvider }
func (i *testInfrastructure) Shutdown(ctx context.Context) error   { return nil }

// NewTestApp creates a new test application instance pointed at the stub
func NewTestApp(postgres *database.Postgres, redis *database.Redis, provider *ProviderStub) (*TestApp, error) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "0",
			ReadTimeout:  config.Duration{Duration: 15 * time.Second},
			WriteTimeout: config.Duration{Duration: 15 * time.Second},
		},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-that-is-at-least-32-characters-long",
			AccessTokenExpiry:  config.Duration{Duration: 15 * time.Minute},
			RefreshTokenExpiry: config.Duration{Duration: 7 * 24 * time.Hour},
		},
		Provider: config.ProviderConfig{
			ClientID:       "test-client",
			ClientSecret:   "test-client-secret",
			AuthURL:        provider.URL() + "/authorize",
			TokenURL:       provider.URL() + "/token",
			RedirectURL:    "http://localhost/api/v1/link/callback",
			UserInfoURL:    provider.URL() + "/userinfo",
			DatasetBaseURL: provider.URL() + "/fitness/v3",
			Scopes:         []string{"fitness.read", "email"},
			Timeout:        config.Duration{Duration: 5 * time.Second},
			StateTTL:       config.Duration{Duration: 10 * time.Minute},
		},
		Prediction: config.PredictionConfig{
			URL:     provider.URL() + "/predict",
			Timeout: config.Duration{Duration: 500 * time.Millisecond},
		},
		Security: config.SecurityConfig{
			BCryptCost:        4,
			RateLimitRequests: 1000,
			RateLimitWindow:   config.Duration{Duration: 1 * time.Minute},
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		},
		Env: "test",
	}

	gin.SetMode(gin.TestMode)

	logger, err := observability.InitLogger("test")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	meterProvider, metricsHandler, err := observability.InitTelemetry("healthlink-test")
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	infra := &testInfrastructure{
		postgres:       postgres,
		redis:          redis,
		logger:         logger,
		metricsHandler: metricsHandler,
		meterProvider:  meterProvider,
	}

	application := app.NewApp(infra, cfg)
	server := httptest.NewServer(application.Router())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	return &TestApp{
		Config:        cfg,
		App:           application,
		Server:        server,
		BaseURL:       server.URL,
		Repositories:  repository.NewRepositories(postgres),
		JWTManager:    jwtManager,
		Logger:        logger,
		meterProvider: meterProvider,
	}, nil
}

func (app *TestApp) Close() error {
	app.Server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if app.meterProvider != nil {
		_ = app.meterProvider.Shutdown(ctx)
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}

	return nil
}
