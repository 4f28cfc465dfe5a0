// Package export serializes filtered records into downloadable spreadsheets.
package export

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/qed-utility/portal-backend/bulkops"
	"github.com/qed-utility/portal-backend/database"
	"github.com/qed-utility/portal-backend/events/modules/audit"
	"github.com/qed-utility/portal-backend/model"
	"github.com/qed-utility/portal-backend/restapi/modules/auth"
	"github.com/qed-utility/portal-backend/spreadsheet"
	"github.com/qed-utility/portal-backend/util"
)

// Handlers carries the export dependencies.
type Handlers struct {
	DB     database.DBConnection
	Events *audit.Producer
	Log    *zap.Logger
}

// Export handles POST /api/v1/export. It streams records matching the
// filter as an xlsx attachment using the upload template's column order, so
// an exported file re-imports through the upload parser unchanged.
func (h *Handlers) Export(c *fiber.Ctx) error {
	var req struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Circle    string `json:"circle"`
		Activity  string `json:"activitytype"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	filter := database.RecordFilter{Circle: req.Circle, Activity: req.Activity}
	if req.StartDate != "" {
		start, err := util.ParseDate(req.StartDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid start_date",
			})
		}
		filter.Start = &start
	}
	if req.EndDate != "" {
		end, err := util.ParseDate(req.EndDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid end_date",
			})
		}
		filter.End = &end
	}

	records, err := h.DB.ListRecords(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Export query failed",
		})
	}
	if len(records) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No records found",
		})
	}

	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordRow(r))
	}

	var buf bytes.Buffer
	if err := spreadsheet.Write(&buf, bulkops.UploadColumns, rows); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build spreadsheet",
		})
	}

	username := auth.Username(c)
	entry := model.AuditEntry{
		Username:  username,
		Operation: auth.OpExport,
		RowCount:  len(records),
	}
	if err := h.DB.WriteAudit(c.Context(), entry); err != nil {
		h.Log.Warn("Audit write failed", zap.Error(err))
	}
	if err := h.Events.PublishBulkOperation(c.Context(), entry); err != nil {
		h.Log.Warn("Audit event publish failed", zap.Error(err))
	}

	h.Log.Info("Export generated",
		zap.String("username", username), zap.Int("rows", len(records)))

	c.Set(fiber.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="records_export.xlsx"`)
	return c.Send(buf.Bytes())
}

// recordRow flattens a record into the fixed export column schema.
func recordRow(r model.Record) map[string]string {
	row := map[string]string{
		"qacajobid":    r.JobID,
		"siteid":       r.SiteID,
		"sitename":     r.SiteName,
		"circle":       r.Circle,
		"client":       r.Client,
		"activitytype": r.Activity,
		"status":       r.Status,
		"startdate":    r.StartDate.Format(util.DateLayout),
	}
	if r.DueDate != nil {
		row["finalduedate"] = util.FormatDate(r.DueDate)
	}
	return row
}
