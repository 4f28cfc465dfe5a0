// Package model provides data models for the portal backend.
package model

import (
	"time"
)

// Record status values mirror the workflow engine's wording.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Record is a business entity in the primary datastore. Rows are created
// and deleted through bulk operations keyed by the QACA job id.
type Record struct {
	ID        string     `json:"id"`
	JobID     string     `json:"qacajobid"`
	SiteID    string     `json:"siteid"`
	SiteName  string     `json:"sitename"`
	Circle    string     `json:"circle"`
	Client    string     `json:"client"`
	Activity  string     `json:"activitytype"`
	Status    string     `json:"status"`
	StartDate time.Time  `json:"startdate"`
	DueDate   *time.Time `json:"finalduedate,omitempty"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RowError describes why a single spreadsheet row was rejected.
type RowError struct {
	Row     int      `json:"row"`
	JobID   string   `json:"qacajobid"`
	Reasons []string `json:"errors"`
}

// UploadReport is the per-row outcome of validating one uploaded batch.
// It lives only for the duration of the request.
type UploadReport struct {
	Accepted []Record   `json:"rows"`
	Rejected []RowError `json:"rejected"`
}

// Valid reports whether every row passed validation.
func (r *UploadReport) Valid() bool {
	return len(r.Rejected) == 0
}

// DeleteResult is the per-row outcome of one bulk delete.
type DeleteResult struct {
	JobID  string `json:"qacajobid"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// AuditEntry records who ran a bulk operation and what it touched.
type AuditEntry struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Operation string    `json:"operation"`
	RowCount  int       `json:"row_count"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
