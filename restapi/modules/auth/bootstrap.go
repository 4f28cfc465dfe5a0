package auth

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/qed-utility/portal-backend/database"
	"github.com/qed-utility/portal-backend/model"
)

// BootstrapResult summarizes what a bootstrap run created.
type BootstrapResult struct {
	GroupsCreated []string `json:"groups_created"`
	AdminCreated  bool     `json:"admin_created"`
}

// EnsureDefaultGroups creates the fixed group set if absent. Safe to run
// repeatedly.
func EnsureDefaultGroups(ctx context.Context, db database.DBConnection) ([]string, error) {
	var created []string
	for _, g := range model.DefaultGroups() {
		was, err := db.EnsureGroup(ctx, g.Name, g.Description)
		if err != nil {
			return created, err
		}
		if was {
			created = append(created, g.Name)
		}
	}
	return created, nil
}

// BootstrapAdmin creates the local admin account if absent. The password
// comes from ADMIN_PASSWORD; without one no local admin is created.
func BootstrapAdmin(ctx context.Context, db database.DBConnection) (bool, error) {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return false, nil
	}

	if _, err := db.GetUser(ctx, "admin"); err == nil {
		return false, nil
	} else if !errors.Is(err, database.ErrUserNotFound) {
		return false, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}

	admin := model.NewUser("admin")
	admin.PasswordHash = hash
	if err := db.UpsertUser(ctx, admin); err != nil {
		return false, err
	}
	if err := db.ReplaceMemberships(ctx, "admin", []string{model.GroupAdmin}); err != nil {
		return false, err
	}
	return true, nil
}

// Bootstrap runs the full idempotent setup: default groups, reference
// circle/activity lists, and the optional local admin.
func Bootstrap(ctx context.Context, db database.DBConnection, log *zap.Logger) (*BootstrapResult, error) {
	result := &BootstrapResult{GroupsCreated: []string{}}

	created, err := EnsureDefaultGroups(ctx, db)
	if err != nil {
		return nil, err
	}
	result.GroupsCreated = append(result.GroupsCreated, created...)

	if err := db.SeedReference(ctx, model.Circles, model.Activities); err != nil {
		return nil, err
	}

	adminCreated, err := BootstrapAdmin(ctx, db)
	if err != nil {
		return nil, err
	}
	result.AdminCreated = adminCreated

	log.Info("Bootstrap complete",
		zap.Int("groups_created", len(result.GroupsCreated)),
		zap.Bool("admin_created", result.AdminCreated))
	return result, nil
}
