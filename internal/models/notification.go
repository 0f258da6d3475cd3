package models

import "time"

// NotificationDuration is how long a transient notification stays visible.
const NotificationDuration = 5 * time.Second

// Notification is a dismissable message shown once on the next rendered page.
type Notification struct {
	Message  string        `json:"message"`
	Action   string        `json:"action,omitempty"`
	Duration time.Duration `json:"duration"`
}
