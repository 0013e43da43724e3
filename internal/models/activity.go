package models

import "time"

// Activity actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionUpload = "upload"
)

// Activity is one append-only audit entry.
type Activity struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Snapshot   Fields    `json:"snapshot,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
