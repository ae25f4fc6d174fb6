package profile

import "errors"

var (
	// ErrNotFound is returned when no profile exists for a device ID.
	ErrNotFound = errors.New("profile not found")

	// ErrMissingDeviceID is returned when a profile has no device ID.
	ErrMissingDeviceID = errors.New("profile device_id is required")
)
