// Package audit defines types for Kafka event publication of bulk operations.
package audit

import (
	"time"

	"github.com/qed-utility/portal-backend/model"
)

// BulkOperationEvent represents a completed bulk operation published to Kafka.
type BulkOperationEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	Entry model.AuditEntry `json:"entry"`
}
