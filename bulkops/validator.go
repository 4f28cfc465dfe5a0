// Package bulkops implements spreadsheet-driven batch insert and delete
// operations against the primary datastore.
package bulkops

import (
	"fmt"
	"strings"
	"time"

	"github.com/qed-utility/portal-backend/model"
	"github.com/qed-utility/portal-backend/spreadsheet"
	"github.com/qed-utility/portal-backend/util"
)

// UploadColumns is the fixed column schema of the upload template, in
// documented order. Export uses the same schema so exported files re-import
// cleanly.
var UploadColumns = []string{
	"qacajobid", "siteid", "sitename", "circle", "client",
	"activitytype", "status", "startdate", "finalduedate",
}

// RequiredColumns must be present in every upload file.
var RequiredColumns = []string{"qacajobid", "siteid", "circle", "activitytype", "startdate"}

// DeleteColumn is the single required column of the delete template.
const DeleteColumn = "qacajobid"

// RefData is the reference snapshot rows are validated against.
type RefData struct {
	Circles    map[string]bool
	Activities map[string]bool
}

// NewRefData builds a lookup snapshot from the reference lists.
func NewRefData(circles, activities []string) RefData {
	ref := RefData{
		Circles:    make(map[string]bool, len(circles)),
		Activities: make(map[string]bool, len(activities)),
	}
	for _, c := range circles {
		ref.Circles[c] = true
	}
	for _, a := range activities {
		ref.Activities[a] = true
	}
	return ref
}

// Validator checks parsed rows against required fields, type constraints and
// referential existence. It is a pure function of the row and the reference
// snapshot taken at construction.
type Validator struct {
	refs RefData
}

// NewValidator builds a Validator over a reference snapshot.
func NewValidator(refs RefData) *Validator {
	return &Validator{refs: refs}
}

// field reads a cell treating the export placeholder "N/A" as blank, so
// exported files re-import cleanly.
func field(row spreadsheet.Row, col string) string {
	v := row.Get(col)
	if strings.EqualFold(v, "N/A") {
		return ""
	}
	return v
}

// ValidateRow returns the typed record for a raw row, or the list of
// failure reasons. A row with any reason never reaches the bulk writer.
func (v *Validator) ValidateRow(row spreadsheet.Row) (model.Record, []string) {
	var reasons []string

	for _, col := range RequiredColumns {
		if field(row, col) == "" {
			reasons = append(reasons, "Missing required field: "+col)
		}
	}

	record := model.Record{
		JobID:    field(row, "qacajobid"),
		SiteID:   field(row, "siteid"),
		SiteName: field(row, "sitename"),
		Circle:   field(row, "circle"),
		Client:   field(row, "client"),
		Activity: field(row, "activitytype"),
		Status:   field(row, "status"),
	}
	if record.Status == "" {
		record.Status = model.StatusPending
	} else if record.Status != model.StatusPending && record.Status != model.StatusCompleted {
		reasons = append(reasons, fmt.Sprintf("Invalid value '%s' for status", record.Status))
	}

	if record.Circle != "" && !v.refs.Circles[record.Circle] {
		reasons = append(reasons, "unknown Circle")
	}
	if record.Activity != "" && !v.refs.Activities[record.Activity] {
		reasons = append(reasons, "unknown Activity")
	}

	if raw := field(row, "startdate"); raw != "" {
		start, err := parseDate(raw)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("Invalid date '%s' for startdate", raw))
		} else {
			record.StartDate = start
		}
	}
	if raw := field(row, "finalduedate"); raw != "" {
		due, err := parseDate(raw)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("Invalid date '%s' for finalduedate", raw))
		} else {
			record.DueDate = &due
		}
	}

	if len(reasons) > 0 {
		return model.Record{}, reasons
	}
	return record, nil
}

// ValidateBatch validates every row, collecting per-row outcomes instead of
// failing fast. Duplicate job ids within one file are rejected.
func (v *Validator) ValidateBatch(rows []spreadsheet.Row) model.UploadReport {
	report := model.UploadReport{
		Accepted: []model.Record{},
		Rejected: []model.RowError{},
	}

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		record, reasons := v.ValidateRow(row)

		jobID := field(row, "qacajobid")
		if jobID != "" {
			key := strings.ToLower(jobID)
			if seen[key] {
				reasons = append(reasons, "Duplicate qacajobid in file")
			}
			seen[key] = true
		}

		if len(reasons) > 0 {
			report.Rejected = append(report.Rejected, model.RowError{
				Row:     row.Number,
				JobID:   jobID,
				Reasons: reasons,
			})
			continue
		}
		report.Accepted = append(report.Accepted, record)
	}
	return report
}

func parseDate(raw string) (time.Time, error) {
	return util.ParseDate(raw)
}
