package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/credit-service/internal/api/http/handlers"
	"github.com/spec-kit/credit-service/internal/auth"
	"github.com/spec-kit/credit-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	CreditCards    *handlers.CreditCardHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   *ratelimit.Limiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	healthz := app.Group("/healthz")
	healthz.Get("/up", cfg.Health.Up)
	healthz.Get("/ready", cfg.Health.Ready)
	healthz.Get("/metrics", cfg.Health.Metrics)
	healthz.Delete("/metrics", cfg.Health.ResetMetrics)

	authGroup := app.Group("/auth")
	if cfg.LoginLimiter != nil {
		authGroup.Post("/access_token", cfg.LoginLimiter.Middleware(func(c *fiber.Ctx) string {
			return c.FormValue("username")
		}), cfg.Users.AccessToken)
	} else {
		authGroup.Post("/access_token", cfg.Users.AccessToken)
	}

	// Registered ahead of the authenticated group so it is matched first.
	app.Post("/user/register", cfg.Users.Register)

	user := app.Group("/user", cfg.AuthMiddleware.Handle)
	user.Get("", cfg.Users.Me)
	user.Patch("", cfg.Users.Update)
	user.Post("/document", cfg.Users.Document)
	user.Post("/face", cfg.Users.Face)

	cards := app.Group("/credit_card", cfg.AuthMiddleware.Handle)
	cards.Get("", cfg.CreditCards.Current)
	cards.Post("/new", cfg.CreditCards.Open)
	cards.Post("/increase_limit", cfg.CreditCards.IncreaseLimit)
	cards.Post("/close", cfg.CreditCards.Close)
}
