// Package deletion implements spreadsheet-driven bulk record removal.
package deletion

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/qed-utility/portal-backend/bulkops"
	"github.com/qed-utility/portal-backend/database"
	"github.com/qed-utility/portal-backend/events/modules/audit"
	"github.com/qed-utility/portal-backend/internal/metrics"
	"github.com/qed-utility/portal-backend/model"
	"github.com/qed-utility/portal-backend/restapi/modules/auth"
	"github.com/qed-utility/portal-backend/spreadsheet"
)

// Handlers carries the bulk delete dependencies.
type Handlers struct {
	DB      database.DBConnection
	Writer  *bulkops.Writer
	Events  *audit.Producer
	MaxRows int
	Log     *zap.Logger
}

// Execute handles POST /api/v1/delete/execute. The uploaded file must carry
// a qacajobid column; all listed records are deleted in one transaction and
// a per-row result is returned.
func (h *Handlers) Execute(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Spreadsheet file is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	rows, err := spreadsheet.Parse(src, []string{bulkops.DeleteColumn}, h.MaxRows)
	if err != nil {
		var parseErr *spreadsheet.ParseError
		if errors.As(err, &parseErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": parseErr.Reason,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	seen := make(map[string]bool, len(rows))
	jobIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		id := row.Get(bulkops.DeleteColumn)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		jobIDs = append(jobIDs, id)
	}

	username := auth.Username(c)
	h.Log.Info("Bulk delete started",
		zap.String("username", username), zap.Int("rows", len(jobIDs)))

	results, err := h.Writer.DeleteBatch(c.Context(), jobIDs)
	if err != nil {
		var writeErr *bulkops.WriteError
		if errors.As(err, &writeErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Delete batch rejected",
				"total":   writeErr.Rows,
				"deleted": 0,
				"failed":  writeErr.Rows,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Delete failed",
		})
	}

	deleted := 0
	for _, r := range results {
		if r.Status == "DELETED" {
			deleted++
		}
	}

	entry := model.AuditEntry{
		Username:  username,
		Operation: auth.OpBulkDelete,
		RowCount:  deleted,
	}
	if err := h.DB.WriteAudit(c.Context(), entry); err != nil {
		h.Log.Warn("Audit write failed", zap.Error(err))
	}
	if err := h.Events.PublishBulkOperation(c.Context(), entry); err != nil {
		h.Log.Warn("Audit event publish failed", zap.Error(err))
	}

	metrics.DeletedRows.Add(float64(deleted))
	h.Log.Info("Bulk delete completed",
		zap.String("username", username),
		zap.Int("total", len(jobIDs)),
		zap.Int("deleted", deleted),
		zap.Int("failed", len(jobIDs)-deleted))

	return c.JSON(fiber.Map{
		"total":   len(jobIDs),
		"deleted": deleted,
		"failed":  len(jobIDs) - deleted,
		"results": results,
	})
}
