package model

import "time"

// Notification is an in-app message shown to a user, written by the
// medication.changed queue consumer when a schedule is created,
// retimed or removed. Read state is tracked per row.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – recipient.
//  Title     – short headline.
//  Message   – body text.
//  Type      – event kind (created, updated, schedule_changed, deleted).
//  Read      – whether the user has opened it.
//  CreatedAt – creation timestamp.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Title     string    // notifications.title
	Message   string    // notifications.message
	Type      string    // notifications.type
	Read      bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
