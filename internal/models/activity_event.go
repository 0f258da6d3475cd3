package models

import "time"

// Activity event types.
const (
	ActivityLogin          = "LOGIN"
	ActivityLogout         = "LOGOUT"
	ActivityDeviceCreated  = "DEVICE_CREATED"
	ActivityDeviceDeleted  = "DEVICE_DELETED"
	ActivityCodeIssued     = "CODE_ISSUED"
	ActivityTriggerCreated = "TRIGGER_CREATED"
	ActivityWindowOpened   = "WINDOW_OPENED"
)

// ActivityEvent is a single entry of the console audit trail.
type ActivityEvent struct {
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // LOGIN | LOGOUT | DEVICE_CREATED | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
