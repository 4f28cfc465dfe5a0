// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/qed-utility/portal-backend/bulkops"
	"github.com/qed-utility/portal-backend/database"
	"github.com/qed-utility/portal-backend/events/modules/audit"
	"github.com/qed-utility/portal-backend/restapi/modules/auth"
	"github.com/qed-utility/portal-backend/restapi/modules/dashboard"
	"github.com/qed-utility/portal-backend/restapi/modules/deletion"
	"github.com/qed-utility/portal-backend/restapi/modules/export"
	"github.com/qed-utility/portal-backend/restapi/modules/processdata"
	"github.com/qed-utility/portal-backend/restapi/modules/upload"
)

// Deps carries everything the route handlers need.
type Deps struct {
	DB       database.DBConnection
	Workflow *database.WorkflowDB
	Writer   *bulkops.Writer
	Gate     *auth.Gate
	Schema   graphql.Schema
	Events   *audit.Producer
	MaxRows  int
	Log      *zap.Logger
}

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
// CORS and logging are handled globally in internal/api/fiber.go.
func SetupRoutes(app *fiber.App, d Deps) {

	uploadHandlers := &upload.Handlers{DB: d.DB, Writer: d.Writer, Events: d.Events, MaxRows: d.MaxRows, Log: d.Log}
	deleteHandlers := &deletion.Handlers{DB: d.DB, Writer: d.Writer, Events: d.Events, MaxRows: d.MaxRows, Log: d.Log}
	exportHandlers := &export.Handlers{DB: d.DB, Events: d.Events, Log: d.Log}
	processHandlers := &processdata.Handlers{Workflow: d.Workflow, Log: d.Log}
	dashHandlers := &dashboard.Handlers{Workflow: d.Workflow, Log: d.Log}

	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL Route - Mounted within the api group to inherit path prefixes
	api.Post("/graphql", auth.RequireAuth, auth.RequireOperation(d.Gate, auth.OpViewDashboard), GraphQLHandler(d.Schema))

	// Auth Routes
	authGroup := api.Group("/auth")
	authGroup.Post("/login", auth.Login(d.DB, d.Workflow, d.Log))
	authGroup.Post("/logout", auth.RequireAuth, auth.Logout())
	authGroup.Get("/me", auth.RequireAuth, auth.Me(d.DB))

	// Dashboard
	dashGroup := api.Group("/dashboard", auth.RequireAuth, auth.RequireOperation(d.Gate, auth.OpViewDashboard))
	dashGroup.Get("/summary", dashHandlers.Summary)
	dashGroup.Get("/activity-types", dashHandlers.ActivityTypes)

	// Process Data Browser
	processGroup := api.Group("/process-data", auth.RequireAuth, auth.RequireOperation(d.Gate, auth.OpProcessData))
	processGroup.Get("/", processHandlers.Rows)
	processGroup.Get("/filters", processHandlers.FilterValues)

	// Bulk Upload
	uploadGroup := api.Group("/upload", auth.RequireAuth, auth.RequireOperation(d.Gate, auth.OpBulkUpload))
	uploadGroup.Post("/validate", uploadHandlers.Validate)
	uploadGroup.Post("/execute", uploadHandlers.Execute)

	// Bulk Delete
	deleteGroup := api.Group("/delete", auth.RequireAuth, auth.RequireOperation(d.Gate, auth.OpBulkDelete))
	deleteGroup.Post("/execute", deleteHandlers.Execute)

	// Export
	api.Post("/export", auth.RequireAuth, auth.RequireOperation(d.Gate, auth.OpExport), exportHandlers.Export)

	// RBAC Management (Admin)
	rbac := api.Group("/rbac", auth.RequireAuth, auth.RequireOperation(d.Gate, auth.OpManageRoles))
	rbac.Post("/bootstrap", auth.RunBootstrap(d.DB, d.Log))
	rbac.Get("/config", auth.GetGateConfig(d.Gate))
	rbac.Get("/groups", auth.ListGroups(d.DB))

	d.Log.Info("API routes initialized successfully")
}
