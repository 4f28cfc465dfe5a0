// Package database - Handles all interaction with the primary datastore
package database

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/qed-utility/portal-backend/config"
)

var logger = InitLogger() // setup the logger

// DBConnection wraps the connection pool to the primary datastore
type DBConnection struct {
	Pool *pgxpool.Pool
}

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger() *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	logger, _ := prodConfig.Build()
	return logger
}

// Logger exposes the package logger so other packages share one sink
func Logger() *zap.Logger {
	return logger
}

// schema holds the idempotent DDL for every table the portal owns
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		auth_provider TEXT NOT NULL DEFAULT 'local',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS memberships (
		username TEXT NOT NULL,
		group_name TEXT NOT NULL,
		PRIMARY KEY (username, group_name)
	)`,
	`CREATE TABLE IF NOT EXISTS circles (
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS records (
		id UUID PRIMARY KEY,
		qacajobid TEXT NOT NULL UNIQUE,
		siteid TEXT NOT NULL,
		sitename TEXT NOT NULL DEFAULT '',
		circle TEXT NOT NULL REFERENCES circles(name),
		client TEXT NOT NULL DEFAULT '',
		activitytype TEXT NOT NULL REFERENCES activities(name),
		status TEXT NOT NULL DEFAULT 'Pending',
		startdate DATE NOT NULL,
		finalduedate DATE,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_records_circle_activity ON records (circle, activitytype)`,
	`CREATE INDEX IF NOT EXISTS idx_records_startdate ON records (startdate)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL,
		operation TEXT NOT NULL,
		row_count INTEGER NOT NULL DEFAULT 0,
		detail TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// InitializeDatabase connects to the primary datastore and applies the schema
func InitializeDatabase(cfg config.Config) DBConnection {
	const initialInterval = 10 * time.Second
	const maxInterval = 2 * time.Minute

	ctx := context.Background()

	var pool *pgxpool.Pool

	// Configure exponential backoff for connection establishment only;
	// request-level failures are never retried.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = 0 // retry indefinitely

	err := backoff.RetryNotify(func() error {
		logger.Info("Attempting to connect to the primary datastore")

		p, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	}, bo, func(err error, _ time.Duration) {
		logger.Sugar().Warnf("Retrying connection to the primary datastore: %v", err)
	})

	if err != nil {
		logger.Sugar().Fatalf("Backoff Error %v\n", err)
	}

	for _, ddl := range schema {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			logger.Sugar().Fatalf("Failed to apply schema: %v", err)
		}
	}

	logger.Info("Primary datastore initialized")
	return DBConnection{Pool: pool}
}
