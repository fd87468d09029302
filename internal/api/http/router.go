package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cook-api/internal/api/http/handlers"
	"github.com/spec-kit/cook-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Recipes        *handlers.RecipesHandler
	Reviews        *handlers.ReviewsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Reads are public; every mutation runs
// the auth middleware, and the services apply the ownership guard.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	requireAuth := cfg.AuthMiddleware.Handle

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh-token", cfg.Auth.Refresh)
	authGroup.Get("", requireAuth, cfg.Auth.Me)

	recipes := api.Group("/recipe")
	recipes.Get("", cfg.Recipes.List)
	recipes.Get("/:id", cfg.Recipes.Get)
	recipes.Post("", requireAuth, cfg.Recipes.Create)
	recipes.Put("/:id", requireAuth, cfg.Recipes.Update)
	recipes.Delete("/:id", requireAuth, cfg.Recipes.Delete)

	reviews := api.Group("/review")
	reviews.Get("/recipe/:id", cfg.Reviews.ListByRecipe)
	reviews.Post("/recipe/:id", requireAuth, cfg.Reviews.Create)
	reviews.Get("/:id", cfg.Reviews.Get)
	reviews.Put("/:id", requireAuth, cfg.Reviews.Update)
	reviews.Delete("/:id", requireAuth, cfg.Reviews.Delete)
}
