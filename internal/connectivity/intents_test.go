package connectivity

import (
	"testing"
)

func bindTestCoordinators(t *testing.T) (*recordingBus, *stubExecutor, *stubExecutor) {
	t.Helper()

	bus := newRecordingBus()
	instExec := newStubExecutor()
	btExec := newStubExecutor()
	instruments := NewCoordinator(Instruments(), instExec, bus, Options{})
	bluetooth := NewCoordinator(Bluetooth(), btExec, bus, Options{})

	if err := BindIntents(bus, instruments, bluetooth); err != nil {
		t.Fatalf("BindIntents() error = %v", err)
	}
	return bus, instExec, btExec
}

func TestBindIntents_SubscribesAllTopics(t *testing.T) {
	bus, _, _ := bindTestCoordinators(t)

	want := []string{
		TopicInstrumentScanRequested,
		TopicInstrumentConnectRequested,
		TopicInstrumentDisconnRequested,
		TopicBluetoothScanRequested,
		TopicBluetoothPairRequested,
		TopicBluetoothForgetRequested,
		TopicBluetoothPairedRequested,
	}
	for _, topic := range want {
		if _, ok := bus.handlers[topic]; !ok {
			t.Errorf("intent topic %q not subscribed", topic)
		}
	}
}

func TestIntents_Dispatch(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		payload  string
		executor string // "instruments" or "bluetooth"
		command  string
	}{
		{"instrument scan", TopicInstrumentScanRequested, `{}`, "instruments", "list_devices"},
		{"instrument connect", TopicInstrumentConnectRequested, `{"device_id":"A"}`, "instruments", "connect_device"},
		{"instrument disconnect", TopicInstrumentDisconnRequested, `{"device_id":"A"}`, "instruments", "disconnect_device"},
		{"bluetooth scan", TopicBluetoothScanRequested, `{}`, "bluetooth", "scan"},
		{"bluetooth pair", TopicBluetoothPairRequested, `{"device_id":"bt-1"}`, "bluetooth", "pair"},
		{"bluetooth forget", TopicBluetoothForgetRequested, `{"device_id":"bt-1"}`, "bluetooth", "forget"},
		{"bluetooth paired list", TopicBluetoothPairedRequested, `{}`, "bluetooth", "paired_devices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus, instExec, btExec := bindTestCoordinators(t)

			handler := bus.handlers[tt.topic]
			if err := handler(tt.topic, []byte(tt.payload)); err != nil {
				t.Fatalf("handler(%s) error = %v", tt.topic, err)
			}

			exec := instExec
			if tt.executor == "bluetooth" {
				exec = btExec
			}
			if got := exec.callCount(tt.command); got != 1 {
				t.Errorf("command %q issued %d times, want 1", tt.command, got)
			}
		})
	}
}

func TestIntents_RejectBadPayloads(t *testing.T) {
	bus, instExec, _ := bindTestCoordinators(t)
	handler := bus.handlers[TopicInstrumentConnectRequested]

	if err := handler(TopicInstrumentConnectRequested, []byte(`not json`)); err == nil {
		t.Error("handler accepted malformed JSON")
	}
	if err := handler(TopicInstrumentConnectRequested, []byte(`{}`)); err == nil {
		t.Error("handler accepted missing device_id")
	}
	if got := instExec.callCount("connect_device"); got != 0 {
		t.Errorf("remote command issued for rejected intents: %d", got)
	}
}
