// Package processdata exposes read-only browsing of workflow process rows.
package processdata

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/qed-utility/portal-backend/database"
)

// Handlers carries the process-data dependencies.
type Handlers struct {
	Workflow *database.WorkflowDB
	Log      *zap.Logger
}

// FilterValues handles GET /api/v1/process-data/filters, returning the
// distinct values for each filterable process variable.
func (h *Handlers) FilterValues(c *fiber.Ctx) error {
	values, err := h.Workflow.GetProcessFilterValues(c.Context())
	if err != nil {
		return workflowError(c, h.Log, err)
	}
	return c.JSON(values)
}

// Rows handles GET /api/v1/process-data. At least one filter must be set;
// results are paginated with limit/offset query parameters.
func (h *Handlers) Rows(c *fiber.Ctx) error {
	filter := database.ProcessFilter{
		JobID:    c.Query("qacajobid"),
		SiteID:   c.Query("siteid"),
		Circle:   c.Query("circle"),
		Activity: c.Query("activitytype"),
	}
	if filter.Empty() {
		return c.JSON(fiber.Map{"rows": []database.ProcessRow{}})
	}

	limit := queryInt(c, "limit", 100)
	offset := queryInt(c, "offset", 0)

	rows, err := h.Workflow.GetProcessRows(c.Context(), filter, limit, offset)
	if err != nil {
		return workflowError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"rows": rows})
}

func queryInt(c *fiber.Ctx, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}

func workflowError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var connErr *database.ConnectionError
	if errors.As(err, &connErr) {
		log.Warn("Workflow database unavailable", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Workflow database unavailable",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Query failed",
	})
}
