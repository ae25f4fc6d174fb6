package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the MeloHub MQTT hierarchy.
//
// Backend request/response topics carry command traffic between the hub
// and device backends: melohub/request/{backend}/{request_id} and
// melohub/response/{backend}/{request_id}.
//
// Event topics fan lifecycle events out to UIs and other consumers:
// melohub/events/{segments...}, where segments are the canonical in-process
// topic with colons replaced by slashes.
const (
	// TopicPrefix is the base for all MeloHub topics.
	TopicPrefix = "melohub"

	// TopicPrefixEvents is the base for lifecycle event topics.
	TopicPrefixEvents = "melohub/events"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "melohub/system"
)

// Topics provides builders for MeloHub MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	reqTopic := topics.BackendRequest("devicesd", "req-abc123")
//	// Returns: "melohub/request/devicesd/req-abc123"
type Topics struct{}

// BackendRequest returns the topic for command requests to a backend.
//
// Example: melohub/request/devicesd/req-abc123
func (Topics) BackendRequest(backend, requestID string) string {
	return fmt.Sprintf("%s/request/%s/%s", TopicPrefix, backend, requestID)
}

// BackendResponse returns the topic for command responses from a backend.
//
// Example: melohub/response/devicesd/req-abc123
func (Topics) BackendResponse(backend, requestID string) string {
	return fmt.Sprintf("%s/response/%s/%s", TopicPrefix, backend, requestID)
}

// BackendStatus returns the topic for backend availability status.
//
// Example: melohub/status/devicesd
func (Topics) BackendStatus(backend string) string {
	return fmt.Sprintf("%s/status/%s", TopicPrefix, backend)
}

// Event returns the wire topic for a canonical event topic.
// Canonical topics use colon separators in process; on the wire the
// colons become topic levels.
//
// Example: Event("bluetooth:scan:started") -> "melohub/events/bluetooth/scan/started"
func (Topics) Event(canonical string) string {
	return TopicPrefixEvents + "/" + strings.ReplaceAll(canonical, ":", "/")
}

// CanonicalEvent converts a wire event topic back to its canonical form.
// Returns false if the topic is not under the events prefix.
//
// Example: CanonicalEvent("melohub/events/bluetooth/scan/started") -> "bluetooth:scan:started", true
func (Topics) CanonicalEvent(wireTopic string) (string, bool) {
	rest, ok := strings.CutPrefix(wireTopic, TopicPrefixEvents+"/")
	if !ok || rest == "" {
		return "", false
	}
	return strings.ReplaceAll(rest, "/", ":"), true
}

// SystemStatus returns the hub status topic.
//
// Example: melohub/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: melohub/system/shutdown
func (Topics) SystemShutdown() string {
	return fmt.Sprintf("%s/shutdown", TopicPrefixSystem)
}

// AllBackendResponses returns a pattern matching all responses from a backend.
//
// Pattern: melohub/response/devicesd/+
func (Topics) AllBackendResponses(backend string) string {
	return fmt.Sprintf("%s/response/%s/+", TopicPrefix, backend)
}

// AllBackendStatuses returns a pattern matching all backend status topics.
//
// Pattern: melohub/status/+
func (Topics) AllBackendStatuses() string {
	return fmt.Sprintf("%s/status/+", TopicPrefix)
}

// AllEvents returns a pattern matching all lifecycle event topics.
//
// Pattern: melohub/events/#
func (Topics) AllEvents() string {
	return TopicPrefixEvents + "/#"
}

// AllTopics returns a pattern matching all MeloHub topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: melohub/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
