package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteScanMetric records the outcome of a device scan.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - universe: The device universe scanned ("instruments", "bluetooth")
//   - duration: Wall-clock time the scan took
//   - deviceCount: Number of devices discovered
//   - success: Whether the scan completed
//
// Example:
//
//	client.WriteScanMetric("bluetooth", 2*time.Second, 5, true)
func (c *Client) WriteScanMetric(universe string, duration time.Duration, deviceCount int, success bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"scans",
		map[string]string{
			"universe": universe,
		},
		map[string]interface{}{
			"duration_ms":  float64(duration.Milliseconds()),
			"device_count": deviceCount,
			"success":      success,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteOperationMetric records the outcome of a per-device operation
// (connect, disconnect, pair, forget).
//
// Parameters:
//   - universe: The device universe ("instruments", "bluetooth")
//   - operation: The operation name (e.g. "connect", "pair")
//   - deviceID: Device identifier
//   - success: Whether the backend reported success
func (c *Client) WriteOperationMetric(universe, operation, deviceID string, success bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_operations",
		map[string]string{
			"universe":  universe,
			"operation": operation,
			"device_id": deviceID,
		},
		map[string]interface{}{
			"success": success,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCounterSnapshot records the current device counters for a universe.
//
// Useful for dashboards tracking fleet size and connectivity over time.
//
// Parameters:
//   - universe: The device universe
//   - total: Total cached devices
//   - connected: Devices currently connected
func (c *Client) WriteCounterSnapshot(universe string, total, connected int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_counters",
		map[string]string{
			"universe": universe,
		},
		map[string]interface{}{
			"total":     total,
			"connected": connected,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "hub-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
