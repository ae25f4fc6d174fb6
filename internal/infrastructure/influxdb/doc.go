// Package influxdb provides InfluxDB connectivity for MeloHub Core.
//
// It wraps the official influxdb-client-go v2 library with MeloHub-specific
// patterns for connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Scan outcomes (duration, device counts, success rate)
//   - Per-device operation outcomes (connect, disconnect, pair, forget)
//   - Device counter snapshots for fleet dashboards
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "melohub",
//	    Bucket: "metrics",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Record a scan outcome
//	client.WriteScanMetric("bluetooth", 2*time.Second, 5, true)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead for high-frequency metrics.
package influxdb
