package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/qed-utility/portal-backend/database"
	"github.com/qed-utility/portal-backend/model"
)

// ============================================================================
// AUTH HANDLERS
// ============================================================================

// Login authenticates a user, first against the local users table, then
// against the workflow identity tables. Workflow logins create or refresh
// the local user row and sync group memberships, with the workflow database
// as the source of truth.
func Login(db database.DBConnection, workflow *database.WorkflowDB, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Username and password are required",
			})
		}

		ctx := c.Context()

		user, err := db.GetUser(ctx, req.Username)
		switch {
		case err == nil && user.AuthProvider == "local":
			if !user.IsActive || !CheckPasswordHash(req.Password, user.PasswordHash) {
				return invalidCredentials(c)
			}

		default:
			if err != nil && !errors.Is(err, database.ErrUserNotFound) {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Login failed",
				})
			}
			user, err = loginViaWorkflow(c, db, workflow, req.Username, req.Password, log)
			if err != nil {
				var connErr *database.ConnectionError
				if errors.As(err, &connErr) {
					return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
						"error": "Workflow database unavailable",
					})
				}
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Login failed",
				})
			}
			if user == nil {
				return invalidCredentials(c)
			}
		}

		token, err := GenerateJWT(user.Username, user.Groups)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create session",
			})
		}

		c.Cookie(&fiber.Cookie{
			Name:     "auth_token",
			Value:    token,
			Expires:  time.Now().Add(24 * time.Hour),
			HTTPOnly: true,
			SameSite: "Lax",
		})

		log.Info("User logged in",
			zap.String("username", user.Username),
			zap.Strings("groups", user.Groups))

		return c.JSON(fiber.Map{
			"success": true,
			"user":    user,
		})
	}
}

// loginViaWorkflow checks credentials against the workflow identity table
// and mirrors the user and its memberships into the primary datastore.
func loginViaWorkflow(c *fiber.Ctx, db database.DBConnection, workflow *database.WorkflowDB,
	username, password string, log *zap.Logger) (*model.User, error) {

	ctx := c.Context()

	wu, err := workflow.AuthenticateUser(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if wu == nil {
		return nil, nil
	}

	user := model.NewUser(wu.ID)
	user.Email = wu.Email
	user.FirstName = wu.First
	user.LastName = wu.Last
	user.AuthProvider = "workflow"
	if err := db.UpsertUser(ctx, user); err != nil {
		return nil, err
	}

	groups, err := workflow.GetUserGroups(ctx, wu.ID)
	if err != nil {
		return nil, err
	}
	if err := db.ReplaceMemberships(ctx, user.Username, groups); err != nil {
		return nil, err
	}
	user.Groups = groups

	log.Info("Workflow user synced",
		zap.String("username", user.Username), zap.Strings("groups", groups))
	return user, nil
}

func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Invalid username or password",
	})
}

// Logout clears the session cookie
func Logout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     "auth_token",
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			SameSite: "Lax",
		})
		return c.JSON(fiber.Map{"success": true})
	}
}

// Me returns the authenticated user's profile and memberships
func Me(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := db.GetUser(c.Context(), Username(c))
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "User not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch user",
			})
		}
		return c.JSON(fiber.Map{
			"user":     user,
			"is_admin": user.InGroup(model.GroupAdmin),
		})
	}
}

// ListGroups returns the seeded permission groups (admin only)
func ListGroups(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		groups, err := db.ListGroups(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to list groups",
			})
		}
		return c.JSON(fiber.Map{"groups": groups})
	}
}

// GetGateConfig returns the effective access-gate allow-list (admin only)
func GetGateConfig(gate *Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(gate.Config())
	}
}

// RunBootstrap re-runs the idempotent setup routine (admin only)
func RunBootstrap(db database.DBConnection, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := Bootstrap(c.Context(), db, log)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Bootstrap failed: " + err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"result":  result,
		})
	}
}
