package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/electra-charging/sems/internal/adapter/http/fiber/middleware"
	"github.com/electra-charging/sems/internal/service/station"
)

// NewRouter assembles the fiber application: global middleware, health and
// metrics endpoints, and the station/session routes.
func NewRouter(state *station.State, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "sems",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	// Metrics endpoint for Prometheus
	app.Get("/metrics", func(c *fiber.Ctx) error {
		// Adapt net/http handler to fasthttp for Fiber
		handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		handler(c.Context())
		return nil
	})

	stationHandler := NewStationHandler(state, log)
	app.Get("/station/config", stationHandler.GetConfig)
	app.Post("/station/config", stationHandler.UpdateConfig)
	app.Get("/station/status", stationHandler.Status)

	sessionHandler := NewSessionHandler(state, log)
	app.Post("/sessions", sessionHandler.Create)
	app.Post("/sessions/:id/stop", sessionHandler.Stop)
	app.Post("/sessions/:id/power-update", sessionHandler.PowerUpdate)

	return app
}
