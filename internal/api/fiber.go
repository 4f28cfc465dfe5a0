package api

import (
	"context"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	gqlschema "github.com/qed-utility/portal-backend/graphql"
	"github.com/qed-utility/portal-backend/internal/metrics"
	"github.com/qed-utility/portal-backend/restapi"
)

// NewFiberApp creates and configures a Fiber app with REST and GraphQL routes
func NewFiberApp(deps restapi.Deps) (*fiber.App, error) {
	// Initialize GraphQL schema
	schema, err := gqlschema.CreateSchema(deps.Workflow)
	if err != nil {
		return nil, err
	}
	deps.Schema = schema

	app := fiber.New(fiber.Config{
		AppName:     "portal-backend API v1.0",
		BodyLimit:   10 * 1024 * 1024, // 10MB, spreadsheets are small
		ReadTimeout: 60 * time.Second,
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	// Consolidated CORS Configuration
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000,http://localhost:4000,http://127.0.0.1:3000,http://127.0.0.1:4000",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		AllowMethods:     "GET, POST, HEAD, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("graphql_op", "-")
		return c.Next()
	})
	app.Use(logger.New())
	app.Use(metrics.Middleware())

	// Health check endpoint. The workflow database is external, so its
	// state is reported without failing liveness.
	app.Get("/healthz", func(c *fiber.Ctx) error {
		workflow := "up"
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := deps.Workflow.Ping(ctx); err != nil {
			workflow = "down"
		}
		return c.JSON(fiber.Map{"status": "healthy", "workflow": workflow})
	})

	// Prometheus scrape endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Setup REST and GraphQL routes (Pass the schema here)
	restapi.SetupRoutes(app, deps)

	return app, nil
}
