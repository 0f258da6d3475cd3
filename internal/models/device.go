package models

import "time"

// DeviceInfo is a device registered by a user. The backend owns the record.
type DeviceInfo struct {
	ID        string     `json:"_id"`
	UserID    string     `json:"_userId"`
	Name      string     `json:"name,omitempty"`
	CreatedOn *time.Time `json:"createdOn,omitempty"`
}

// DeviceCode is the short-lived authorization code used to pair a device.
// It is only ever held in transient view state.
type DeviceCode struct {
	Code string `json:"code"`
}
