package model

import "time"

// EventKind distinguishes the analytics events recorded against a resource.
type EventKind string

const (
	EventView  EventKind = "view"
	EventClick EventKind = "click"
)

// ResourceEvent is a single view or click on a resource.
type ResourceEvent struct {
	ResourceID string    `db:"resource_id"`
	Kind       EventKind `db:"kind"`
	UserID     *string   `db:"user_id"`
	ClientIP   string    `db:"client_ip"`
	Source     string    `db:"source"`
	OccurredAt time.Time `db:"occurred_at"`
}
