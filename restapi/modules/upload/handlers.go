// Package upload implements spreadsheet-driven bulk record creation.
package upload

import (
	"errors"
	"fmt"

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

// Handlers carries the upload dependencies.
type Handlers struct {
	DB      database.DBConnection
	Writer  *bulkops.Writer
	Events  *audit.Producer
	MaxRows int
	Log     *zap.Logger
}

// Validate handles POST /api/v1/upload/validate. It parses the uploaded
// file, validates every row against the current reference data, and returns
// the per-row report without writing anything.
func (h *Handlers) Validate(c *fiber.Ctx) error {
	report, err := h.parseAndValidate(c)
	if err != nil {
		var parseErr *spreadsheet.ParseError
		if errors.As(err, &parseErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"valid": false,
				"error": parseErr.Reason,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"valid": false,
			"error": "Validation failed",
		})
	}

	h.Log.Info("Upload validated",
		zap.String("username", auth.Username(c)),
		zap.Int("accepted", len(report.Accepted)),
		zap.Int("rejected", len(report.Rejected)))

	if !report.Valid() {
		return c.JSON(fiber.Map{
			"valid":    false,
			"accepted": len(report.Accepted),
			"rejected": len(report.Rejected),
			"errors":   report.Rejected,
			"rows":     report.Accepted,
		})
	}
	return c.JSON(fiber.Map{
		"valid": true,
		"rows":  report.Accepted,
	})
}

// Execute handles POST /api/v1/upload/execute. It re-parses and re-validates
// the uploaded file, then writes only the accepted rows as one transaction.
// Rejected rows are reported back, never retried.
func (h *Handlers) Execute(c *fiber.Ctx) error {
	report, err := h.parseAndValidate(c)
	if err != nil {
		var parseErr *spreadsheet.ParseError
		if errors.As(err, &parseErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": parseErr.Reason,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Upload failed",
		})
	}

	username := auth.Username(c)
	for i := range report.Accepted {
		report.Accepted[i].CreatedBy = username
	}

	if err := h.Writer.InsertBatch(c.Context(), report.Accepted); err != nil {
		var writeErr *bulkops.WriteError
		if errors.As(err, &writeErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":    fmt.Sprintf("Batch of %d rows rejected", writeErr.Rows),
				"started":  0,
				"failed":   writeErr.Rows,
				"rejected": report.Rejected,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Upload failed",
		})
	}

	entry := model.AuditEntry{
		Username:  username,
		Operation: auth.OpBulkUpload,
		RowCount:  len(report.Accepted),
	}
	if err := h.DB.WriteAudit(c.Context(), entry); err != nil {
		h.Log.Warn("Audit write failed", zap.Error(err))
	}
	if err := h.Events.PublishBulkOperation(c.Context(), entry); err != nil {
		h.Log.Warn("Audit event publish failed", zap.Error(err))
	}

	metrics.UploadedRows.Add(float64(len(report.Accepted)))
	h.Log.Info("Bulk upload executed",
		zap.String("username", username),
		zap.Int("started", len(report.Accepted)),
		zap.Int("failed", len(report.Rejected)))

	return c.JSON(fiber.Map{
		"started":  len(report.Accepted),
		"failed":   len(report.Rejected),
		"fail_log": report.Rejected,
	})
}

// parseAndValidate reads the multipart file, parses it, snapshots the
// reference data and validates the batch.
func (h *Handlers) parseAndValidate(c *fiber.Ctx) (*model.UploadReport, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, &spreadsheet.ParseError{Reason: "No file uploaded. Use 'file' as the form field name."}
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	rows, err := spreadsheet.Parse(src, bulkops.RequiredColumns, h.MaxRows)
	if err != nil {
		return nil, err
	}

	circles, err := h.DB.Circles(c.Context())
	if err != nil {
		return nil, err
	}
	activities, err := h.DB.Activities(c.Context())
	if err != nil {
		return nil, err
	}

	validator := bulkops.NewValidator(bulkops.NewRefData(circles, activities))
	report := validator.ValidateBatch(rows)
	return &report, nil
}
