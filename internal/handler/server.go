package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/kursadbilgin/orderflow/internal/observability"
	"github.com/kursadbilgin/orderflow/internal/transport"
	"go.uber.org/zap"
)

// NewOpsApp builds the operational HTTP server. runs and attempts may be nil when no database is configured.
func NewOpsApp(logger *zap.Logger, metrics *observability.Metrics, checks []ReadinessCheck, runs RunReader, attempts AttemptReader) (*fiber.App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "orderflow-ops",
		DisableStartupMessage: true,
		ErrorHandler:          transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())

	RegisterHealthRoutes(app, checks)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if runs != nil {
		if err := RegisterRunRoutes(app, runs, attempts); err != nil {
			return nil, err
		}
	}
	return app, nil
}
