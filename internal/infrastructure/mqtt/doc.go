// Package mqtt provides MQTT client connectivity for MeloHub Core.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MeloHub uses MQTT as the message bus connecting the hub to device
// backends (devicesd, bluetoothd) and UI clients. The broker (Mosquitto)
// decouples the hub from backend-specific implementations.
//
//	MeloHub Core ↔ MQTT Broker ↔ Device Backends / UIs
//
// Command traffic flows over request/response topics with correlation IDs;
// lifecycle events fan out under melohub/events/#. The Bus type adapts the
// client to the canonical colon-separated topics used in process.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all responses from a backend
//	err = client.Subscribe(mqtt.Topics{}.AllBackendResponses("devicesd"), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a command request
//	topic := mqtt.Topics{}.BackendRequest("devicesd", "req-abc123")
//	client.Publish(topic, []byte(`{"command":"list_devices"}`), 1, false)
package mqtt
