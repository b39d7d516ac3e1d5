package api

import (
	"context"
	"fmt"

	"github.com/brpaz/echozap"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/labnet/testorders/access"
	"github.com/labnet/testorders/config"
	"github.com/labnet/testorders/delivery"
	"github.com/labnet/testorders/errors"
	facilitiesRepository "github.com/labnet/testorders/facilities/repository"
	"github.com/labnet/testorders/links"
	"github.com/labnet/testorders/logger"
	"github.com/labnet/testorders/orders/manager"
	ordersRepository "github.com/labnet/testorders/orders/repository"
	"github.com/labnet/testorders/outbox"
	patientsRepository "github.com/labnet/testorders/patients/repository"
	"github.com/labnet/testorders/reporting"
	resultsRepository "github.com/labnet/testorders/results/repository"
	"github.com/labnet/testorders/results/service"
	"github.com/labnet/testorders/store"
)

func Start(e *echo.Echo, cfg *config.Config, lifecycle fx.Lifecycle) {
	address := fmt.Sprintf(":%d", cfg.HttpPort)
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(address); err != nil {
					fmt.Println(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

func SetReady(healthCheck *HealthCheck, db *mongo.Database, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.Client().Ping(ctx, nil); err != nil {
				return err
			}

			// Repositories append their index hooks before this one because they are
			// dependencies of the handler, so the service is ready once mongo is reachable.
			healthCheck.SetReady(true)
			return nil
		},
	})
}

func NewServer(handler *Handler, healthCheck *HealthCheck, gatherer prometheus.Gatherer, zapLogger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Skip auth and logging for readiness probe and metrics routes
	skipper := RouteSkipper([]string{"/ready", "/metrics"})

	e.Use(middleware.Recover())
	e.Use(WithSkipper(skipper, echozap.ZapLogger(zapLogger)))
	e.Use(NewCallerMiddleware(skipper))

	e.HTTPErrorHandler = errors.CustomHTTPErrorHandler

	e.GET("/ready", healthCheck.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	RegisterHandlers(e, handler)

	return e
}

// NewMetricsRegistry returns a dedicated registry exposed on /metrics.
func NewMetricsRegistry() (prometheus.Registerer, prometheus.Gatherer) {
	registry := prometheus.NewRegistry()
	return registry, registry
}

func Dependencies() []fx.Option {
	return []fx.Option{
		fx.Provide(
			logger.NewProductionLogger,
			logger.Suggar,
			config.NewConfig,
			store.NewConfig,
			store.NewClientFromConfig,
			store.NewDatabase,
			NewMetricsRegistry,
			facilitiesRepository.NewRepository,
			patientsRepository.NewRepository,
			ordersRepository.NewRepository,
			resultsRepository.NewRepository,
			links.NewRepository,
			outbox.NewRepository,
			access.NewResolver,
			delivery.NewTransport,
			delivery.NewMetrics,
			delivery.NewDispatcher,
			reporting.NewMetrics,
			reporting.NewSink,
			reporting.NewReporter,
			manager.NewManager,
			service.NewService,
		),
	}
}

func MainLoop() {
	fx.New(
		append(Dependencies(),
			fx.Provide(
				NewHealthCheck,
				NewHandler,
				NewServer,
			),
			fx.Invoke(SetReady),
			fx.Invoke(Start),
		)...,
	).Run()
}
