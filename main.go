package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"github.com/qed-utility/portal-backend/bulkops"
	"github.com/qed-utility/portal-backend/config"
	"github.com/qed-utility/portal-backend/database"
	"github.com/qed-utility/portal-backend/events/modules/audit"
	"github.com/qed-utility/portal-backend/internal/api"
	"github.com/qed-utility/portal-backend/restapi"
	"github.com/qed-utility/portal-backend/restapi/modules/auth"
)

func main() {
	bootstrapOnly := flag.Bool("bootstrap", false, "seed groups, reference data and the admin user, then exit")
	flag.Parse()

	log := database.Logger()
	cfg := config.Load()

	// Primary store (retries until reachable, applies schema)
	db := database.InitializeDatabase(cfg)
	defer db.Pool.Close()

	auth.SetJWTSecret(cfg.JWTSecret)

	// Seed groups, circles/activities and the optional admin account.
	result, err := auth.Bootstrap(context.Background(), db, log)
	if err != nil {
		log.Fatal("Bootstrap failed", zap.Error(err))
	}
	if *bootstrapOnly {
		log.Info("Bootstrap complete",
			zap.Strings("groups_created", result.GroupsCreated),
			zap.Bool("admin_created", result.AdminCreated))
		return
	}

	// Workflow engine database (lazy connect, errors surface per request)
	workflow, err := database.OpenWorkflowDB(cfg)
	if err != nil {
		log.Fatal("Failed to open workflow database", zap.Error(err))
	}
	defer workflow.Close()

	gate, err := auth.LoadGate(cfg.GateConfigPath)
	if err != nil {
		log.Fatal("Failed to load access gate config", zap.Error(err))
	}

	writer := bulkops.NewWriter(&bulkops.PoolBeginner{Pool: db.Pool}, log)

	var events *audit.Producer
	if len(cfg.KafkaBrokers) > 0 {
		events = audit.NewProducer(cfg.KafkaBrokers, cfg.AuditTopic)
		defer events.Close()
		log.Info("Audit event publication enabled",
			zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.AuditTopic))
	}

	app, err := api.NewFiberApp(restapi.Deps{
		DB:       db,
		Workflow: workflow,
		Writer:   writer,
		Gate:     gate,
		Events:   events,
		MaxRows:  cfg.MaxUploadRows,
		Log:      log,
	})
	if err != nil {
		log.Fatal("Failed to build API server", zap.Error(err))
	}

	log.Info("Starting server", zap.String("address", cfg.HTTPAddress))
	if err := app.Listen(cfg.HTTPAddress); err != nil {
		log.Fatal("Server exited", zap.Error(err))
	}
}
