// Package executor bridges coordinator commands to device backends over
// MQTT request/response topics.
//
// # Architecture
//
//	Coordinator ──Execute(cmd)──▶ Executor ──publish──▶ melohub/request/{backend}/{id}
//	                                  ▲
//	                                  └──correlate──── melohub/response/{backend}/{id}
//
// Each request carries a unique request ID; the executor holds one shared
// subscription on the backend's response wildcard and routes replies to the
// waiting caller by ID. Requests that receive no reply within the configured
// timeout fail with connectivity.ErrBackendUnavailable — the same error the
// coordinator maps to a backend outage.
//
// # Response Semantics
//
// Transport-level failure (publish error, timeout, cancelled context) is an
// error return. A well-formed response with success=false is NOT an error
// from the executor's perspective; it is surfaced through the Result so the
// coordinator can classify it as a remote failure with the backend's own
// message.
package executor
