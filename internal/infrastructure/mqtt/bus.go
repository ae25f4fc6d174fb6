package mqtt

import (
	"encoding/json"
	"fmt"
)

// Bus adapts the MQTT client to the canonical event bus used by the
// connectivity layer.
//
// In-process topics use colon separators ("bluetooth:scan:started"); on the
// wire they live under the events prefix with slash separators
// ("melohub/events/bluetooth/scan/started"). The adapter translates in both
// directions so subscribers always see canonical topics.
type Bus struct {
	client *Client
	qos    byte
	topics Topics
}

// NewBus creates a bus backed by the given MQTT client.
// Messages are published and subscribed at the client's configured QoS.
func NewBus(client *Client) *Bus {
	return &Bus{
		client: client,
		qos:    byte(client.cfg.QoS),
	}
}

// Publish JSON-encodes the payload and publishes it on the wire topic
// derived from the canonical topic.
func (b *Bus) Publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("bus: encode payload for %q: %w", topic, err)
	}
	return b.client.Publish(b.topics.Event(topic), data, b.qos, false)
}

// Subscribe registers a handler for the canonical topic. The handler
// receives the canonical topic, not the wire topic.
func (b *Bus) Subscribe(topic string, handler func(topic string, payload []byte) error) error {
	wireTopic := b.topics.Event(topic)
	return b.client.Subscribe(wireTopic, b.qos, func(wire string, payload []byte) error {
		canonical, ok := b.topics.CanonicalEvent(wire)
		if !ok {
			canonical = wire
		}
		return handler(canonical, payload)
	})
}
