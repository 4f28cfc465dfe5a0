// Package dashboard provides REST aliases for the dashboard aggregates,
// used by portal pages that do not speak GraphQL.
package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/qed-utility/portal-backend/database"
	"github.com/qed-utility/portal-backend/util"
)

// Handlers bundles the dashboard dependencies
type Handlers struct {
	Workflow *database.WorkflowDB
	Log      *zap.Logger
}

// filterFromQuery reads the common summary filters off the query string.
// Unparseable dates are ignored so the defaults (open window) apply.
func filterFromQuery(c *fiber.Ctx) database.SummaryFilter {
	f := database.SummaryFilter{
		Circle:   c.Query("circle"),
		Activity: c.Query("activitytype"),
	}
	f.Start = util.NormalizeDate(c.Query("start_date"))
	f.End = util.NormalizeDate(c.Query("end_date"))
	return f
}

// Summary handles GET /api/v1/dashboard/summary
// It returns the circle-head cards, design-team cards and the
// per-circle/activity count matrix in one response.
func (h *Handlers) Summary(c *fiber.Ctx) error {
	ctx := c.Context()
	filter := filterFromQuery(c)

	circleHead, err := h.Workflow.GetCircleHeadSummary(ctx, filter)
	if err != nil {
		return h.workflowError(c, err)
	}
	designTeam, err := h.Workflow.GetDesignTeamSummary(ctx, filter)
	if err != nil {
		return h.workflowError(c, err)
	}
	byGroup, err := h.Workflow.GetSummaryByGroup(ctx, filter)
	if err != nil {
		return h.workflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"circle_head": circleHead,
		"design_team": designTeam,
		"by_group":    byGroup,
	})
}

// ActivityTypes handles GET /api/v1/dashboard/activity-types
func (h *Handlers) ActivityTypes(c *fiber.Ctx) error {
	types, err := h.Workflow.GetActivityTypes(c.Context())
	if err != nil {
		return h.workflowError(c, err)
	}
	return c.JSON(fiber.Map{"activity_types": types})
}

func (h *Handlers) workflowError(c *fiber.Ctx, err error) error {
	var connErr *database.ConnectionError
	if errors.As(err, &connErr) {
		h.Log.Error("Workflow database unreachable", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Workflow database unavailable",
		})
	}
	h.Log.Error("Dashboard query failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to load dashboard data",
	})
}
