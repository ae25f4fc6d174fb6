package connectivity

import (
	"context"
	"encoding/json"
	"fmt"
)

// Intent topics accepted from observers (typically UI layers). Each
// carries at most a device identifier; the presentation layer forwards
// user gestures as these named commands and renders from the lifecycle
// events that follow.
const (
	TopicInstrumentScanRequested    = "devices:scan_requested"
	TopicInstrumentConnectRequested = "devices:connect_requested"
	TopicInstrumentDisconnRequested = "devices:disconnect_requested"
	TopicBluetoothScanRequested     = "bluetooth:scan_requested"
	TopicBluetoothPairRequested     = "bluetooth:pair_requested"
	TopicBluetoothForgetRequested   = "bluetooth:forget_requested"
	TopicBluetoothPairedRequested   = "bluetooth:paired_requested"
)

// intentPayload is the wire shape of identifier-carrying intents.
type intentPayload struct {
	DeviceID string `json:"device_id"`
}

// BindIntents subscribes the coordinators to the UI intent topics.
//
// Handler errors are returned to the bus (which logs them); the
// operations themselves publish their own error events, so a failed
// intent is never silent.
func BindIntents(bus Bus, instruments, bluetooth *Coordinator) error {
	bindings := []struct {
		topic   string
		handler func(topic string, payload []byte) error
	}{
		{TopicInstrumentScanRequested, scanIntent(instruments)},
		{TopicInstrumentConnectRequested, deviceIntent(instruments.Connect)},
		{TopicInstrumentDisconnRequested, deviceIntent(instruments.Disconnect)},
		{TopicBluetoothScanRequested, scanIntent(bluetooth)},
		{TopicBluetoothPairRequested, deviceIntent(bluetooth.Pair)},
		{TopicBluetoothForgetRequested, deviceIntent(bluetooth.Forget)},
		{TopicBluetoothPairedRequested, func(string, []byte) error {
			return bluetooth.RefreshPaired(context.Background())
		}},
	}

	for _, b := range bindings {
		if err := bus.Subscribe(b.topic, b.handler); err != nil {
			return fmt.Errorf("binding intent %s: %w", b.topic, err)
		}
	}
	return nil
}

// scanIntent dispatches a scan request; the single-flight guard makes
// repeated requests during an active scan harmless.
func scanIntent(c *Coordinator) func(string, []byte) error {
	return func(string, []byte) error {
		_, err := c.Scan(context.Background())
		return err
	}
}

// deviceIntent decodes the device identifier and dispatches to the
// given coordinator operation.
func deviceIntent(op func(context.Context, string) error) func(string, []byte) error {
	return func(topic string, payload []byte) error {
		var intent intentPayload
		if err := json.Unmarshal(payload, &intent); err != nil {
			return fmt.Errorf("decoding %s payload: %w", topic, err)
		}
		if intent.DeviceID == "" {
			return fmt.Errorf("%s: device_id is required", topic)
		}
		return op(context.Background(), intent.DeviceID)
	}
}
