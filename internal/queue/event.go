// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used by both the publisher and the consumer.
const MedicationChangedQueue = "medication.changed"

// MedicationChangedEvent is published whenever a medication is created,
// updated or deleted. It carries the full timing snapshot so downstream
// consumers can build notifications without querying the primary database.
type MedicationChangedEvent struct {
	MedicationID  uint64 `json:"medication_id"`
	UserID        uint64 `json:"user_id"`
	Name          string `json:"name"`
	Change        string `json:"change"` // created | updated | schedule_changed | deleted
	StartDate     string `json:"start_date,omitempty"` // YYYY-MM-DD, empty when unset
	StartTime     string `json:"start_time"`           // HH:mm
	EndDate       string `json:"end_date,omitempty"`   // YYYY-MM-DD, empty when unset
	IntervalHours int    `json:"interval_hours"`
	OccurredAt    string `json:"occurred_at"` // RFC 3339
}
