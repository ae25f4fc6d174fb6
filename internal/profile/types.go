package profile

import "time"

// Profile holds user configuration for a known device: the display alias
// overlaid on scan results and the flag that triggers a connect attempt
// after startup scans.
type Profile struct {
	DeviceID    string    `json:"device_id"`
	Alias       string    `json:"alias"`
	AutoConnect bool      `json:"auto_connect"`
	UpdatedAt   time.Time `json:"updated_at"`
}
