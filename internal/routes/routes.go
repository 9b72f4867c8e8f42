package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	configHandler *handlers.ConfigHandler,
	reportHandler *handlers.ReportHandler,
	claimHandler *handlers.ClaimHandler,
	adminHandler *handlers.AdminHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Use(metrics.Middleware())

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Public
	api.Get("/health", healthHandler.Check)
	api.Get("/config", configHandler.GetConfig)
	api.Get("/reports", reportHandler.List)
	api.Get("/reports/:id", reportHandler.Get)

	// Protected routes (JWT required) - apply middleware to individual routes
	// so the public report reads above stay open
	auth := []fiber.Handler{middleware.JWTProtected(cfg), middleware.RequireIdentity()}
	api.Post("/reports", append(auth, reportHandler.Create)...)
	api.Delete("/reports/:id", append(auth, reportHandler.Delete)...)
	api.Patch("/reports/:id/claimed", append(auth, reportHandler.MarkClaimed)...)

	api.Get("/claims", append(auth, claimHandler.List)...)
	api.Post("/claims", append(auth, claimHandler.Create)...)
	api.Patch("/claims/:id", append(auth, claimHandler.Decide)...)

	// Admin (X-Admin-Token or admin user id)
	admin := api.Group("/admin", middleware.AdminRequired(cfg))
	admin.Post("/retention/sweep", adminHandler.Sweep)
}
