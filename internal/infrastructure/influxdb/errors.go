package influxdb

import "errors"

// Sentinel errors for the metrics sink. Check with errors.Is().
var (
	// ErrNotConnected indicates the client has no InfluxDB connection.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial health probe failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed indicates a write was rejected. Most write failures
	// surface asynchronously through the error callback instead.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrDisabled indicates the metrics sink is disabled in config.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
